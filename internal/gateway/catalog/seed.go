package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
	"gopkg.in/yaml.v3"
)

// ProfileStandard expands to every action the protocol family implements.
const ProfileStandard = "standard"

// File is the YAML catalog seed.
type File struct {
	Banks []BankSpec `yaml:"banks"`
}

type BankSpec struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Protocol string `yaml:"protocol"`
	Endpoint string `yaml:"endpoint"`
	Profile  string `yaml:"profile,omitempty"`

	// Actions override profile entries of the same kind. Omit lists kinds
	// to drop from the profile.
	Actions []ActionSpec `yaml:"actions,omitempty"`
	Omit    []string     `yaml:"omit,omitempty"`
}

type ActionSpec struct {
	Kind            string          `yaml:"kind"`
	Handler         string          `yaml:"handler,omitempty"`
	ConsentRequired bool            `yaml:"consent_required,omitempty"`
	SubActions      []SubActionSpec `yaml:"sub_actions,omitempty"`
}

type SubActionSpec struct {
	Kind    string `yaml:"kind"`
	Handler string `yaml:"handler"`
}

// ParseFile reads a YAML seed. Environment references in the file are
// expanded first so endpoints can differ per deployment.
func ParseFile(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("catalog: read seed: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(raw))))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("catalog: parse seed: %w", err)
	}
	return f, nil
}

// StandardActions is the full action set of a protocol family with the
// conventional handler names. Consent is required for rest banks only.
func StandardActions(family domain.ProtocolFamily) []domain.BankAction {
	consent := family == domain.ProtocolREST

	out := make([]domain.BankAction, 0, len(domain.ActionKinds))
	for _, kind := range domain.ActionKinds {
		a := domain.BankAction{Kind: kind}
		switch kind {
		case domain.ActionAuthorization:
			for _, sub := range domain.SubActionKinds {
				a.SubActions = append(a.SubActions, domain.BankSubAction{
					Kind:    sub,
					Handler: protocol.HandlerName(family, sub),
				})
			}
		case domain.ActionListAccounts, domain.ActionListTransactions:
			a.Handler = protocol.HandlerName(family, kind)
			a.ConsentRequired = consent
		default:
			a.Handler = protocol.HandlerName(family, kind)
		}
		out = append(out, a)
	}
	return out
}

// Rows turns the seed into store rows.
func (f File) Rows() ([]domain.Bank, [][]domain.BankAction, error) {
	banks := make([]domain.Bank, 0, len(f.Banks))
	actions := make([][]domain.BankAction, 0, len(f.Banks))

	for _, spec := range f.Banks {
		if spec.ID == "" {
			return nil, nil, errors.New("catalog: bank without id")
		}
		b := domain.Bank{
			ID:       spec.ID,
			Name:     spec.Name,
			Protocol: domain.ProtocolFamily(spec.Protocol),
			Endpoint: spec.Endpoint,
		}
		if !b.Protocol.Valid() {
			return nil, nil, fmt.Errorf("catalog: bank %s: unknown protocol %q", b.ID, spec.Protocol)
		}

		var rows []domain.BankAction
		switch spec.Profile {
		case "":
		case ProfileStandard:
			rows = StandardActions(b.Protocol)
		default:
			return nil, nil, fmt.Errorf("catalog: bank %s: unknown profile %q", b.ID, spec.Profile)
		}

		for _, as := range spec.Actions {
			a := domain.BankAction{
				Kind:            domain.ActionKind(as.Kind),
				Handler:         as.Handler,
				ConsentRequired: as.ConsentRequired,
			}
			for _, ss := range as.SubActions {
				a.SubActions = append(a.SubActions, domain.BankSubAction{
					Kind:    domain.SubActionKind(ss.Kind),
					Handler: ss.Handler,
				})
			}
			rows = upsertAction(rows, a)
		}

		for _, kind := range spec.Omit {
			rows = removeAction(rows, domain.ActionKind(kind))
		}

		for i := range rows {
			rows[i].BankID = b.ID
		}
		banks = append(banks, b)
		actions = append(actions, rows)
	}
	return banks, actions, nil
}

func upsertAction(rows []domain.BankAction, a domain.BankAction) []domain.BankAction {
	for i := range rows {
		if rows[i].Kind == a.Kind {
			rows[i] = a
			return rows
		}
	}
	return append(rows, a)
}

func removeAction(rows []domain.BankAction, kind domain.ActionKind) []domain.BankAction {
	out := rows[:0]
	for _, r := range rows {
		if r.Kind != kind {
			out = append(out, r)
		}
	}
	return out
}

// Check builds a catalog from the seed alone, without touching a store.
func (f File) Check(reg *protocol.Registry) error {
	banks, perBank, err := f.Rows()
	if err != nil {
		return err
	}
	var all []domain.BankAction
	for _, rows := range perBank {
		all = append(all, rows...)
	}
	_, err = Build(banks, all, reg)
	return err
}

// Import validates the seed against reg and writes it in one transaction.
// Banks absent from the seed are left untouched.
func Import(ctx context.Context, s store.Store, reg *protocol.Registry, f File) error {
	if err := f.Check(reg); err != nil {
		return err
	}
	banks, perBank, err := f.Rows()
	if err != nil {
		return err
	}

	return s.WithTx(ctx, func(tx store.Tx) error {
		for i, b := range banks {
			if err := tx.Banks().UpsertBank(ctx, b); err != nil {
				return fmt.Errorf("catalog: upsert bank %s: %w", b.ID, err)
			}
			if err := tx.Banks().ReplaceActions(ctx, b.ID, perBank[i]); err != nil {
				return fmt.Errorf("catalog: replace actions of %s: %w", b.ID, err)
			}
		}
		return nil
	})
}
