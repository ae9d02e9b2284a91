// Package catalog binds each bank's logical actions to protocol handlers.
//
// A Catalog is an immutable snapshot built once from the store and a handler
// registry. Every invariant is checked when it is built; request paths only
// ever see a valid catalog and never look a handler up by name.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
)

var (
	ErrUnsupportedAction    = errors.New("catalog: unsupported action")
	ErrUnsupportedSubAction = errors.New("catalog: unsupported sub-action")
	ErrUnknownBank          = errors.New("catalog: unknown bank")
)

// Action is a resolved catalog row.
type Action struct {
	Bank            domain.Bank
	Kind            domain.ActionKind
	ConsentRequired bool
	Handler         protocol.Handler // nil for AUTHORIZATION
}

// SubAction is a resolved AUTHORIZATION sub-action row.
type SubAction struct {
	Bank    domain.Bank
	Kind    domain.SubActionKind
	Handler protocol.Handler
}

type actionKey struct {
	bank string
	kind domain.ActionKind
}

type subActionKey struct {
	bank string
	kind domain.SubActionKind
}

type Catalog struct {
	banks      map[string]domain.Bank
	order      []string
	actions    map[actionKey]Action
	subActions map[subActionKey]SubAction
}

// Load reads banks and actions from s and builds a catalog against reg.
func Load(ctx context.Context, s store.Store, reg *protocol.Registry) (*Catalog, error) {
	banks, err := s.Banks().ListBanks(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list banks: %w", err)
	}
	actions, err := s.Banks().ListActions(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list actions: %w", err)
	}
	return Build(banks, actions, reg)
}

// Build validates rows against reg and returns the snapshot. All problems are
// reported together.
func Build(banks []domain.Bank, actions []domain.BankAction, reg *protocol.Registry) (*Catalog, error) {
	c := &Catalog{
		banks:      make(map[string]domain.Bank, len(banks)),
		actions:    make(map[actionKey]Action),
		subActions: make(map[subActionKey]SubAction),
	}

	var errs []error
	for _, b := range banks {
		if !b.Protocol.Valid() {
			errs = append(errs, fmt.Errorf("bank %s: unknown protocol %q", b.ID, b.Protocol))
		}
		c.banks[b.ID] = b
		c.order = append(c.order, b.ID)
	}
	slices.Sort(c.order)

	for _, a := range actions {
		bank, ok := c.banks[a.BankID]
		if !ok {
			errs = append(errs, fmt.Errorf("action %s: unknown bank %q", a.Kind, a.BankID))
			continue
		}
		if !slices.Contains(domain.ActionKinds, a.Kind) {
			errs = append(errs, fmt.Errorf("bank %s: unknown action kind %q", bank.ID, a.Kind))
			continue
		}

		key := actionKey{bank: bank.ID, kind: a.Kind}
		if _, dup := c.actions[key]; dup {
			errs = append(errs, fmt.Errorf("bank %s: duplicate action %s", bank.ID, a.Kind))
			continue
		}

		resolved := Action{Bank: bank, Kind: a.Kind, ConsentRequired: a.ConsentRequired}
		if a.Kind == domain.ActionAuthorization {
			if a.Handler != "" {
				errs = append(errs, fmt.Errorf("bank %s: %s must not name a handler", bank.ID, a.Kind))
			}
			errs = append(errs, c.bindSubActions(bank, a.SubActions, reg)...)
		} else {
			h, err := bind(bank, string(a.Kind), a.Handler, reg)
			if err == nil && !protocol.Satisfies(h, a.Kind) {
				err = fmt.Errorf("bank %s: handler %q cannot serve %s", bank.ID, a.Handler, a.Kind)
			}
			if err != nil {
				errs = append(errs, err)
			}
			resolved.Handler = h
			if len(a.SubActions) > 0 {
				errs = append(errs, fmt.Errorf("bank %s: %s cannot have sub-actions", bank.ID, a.Kind))
			}
		}
		c.actions[key] = resolved
	}

	for _, id := range c.order {
		if c.has(id, domain.ActionSinglePayment) {
			for _, need := range []domain.ActionKind{domain.ActionAuthorization, domain.ActionGetPaymentStatus} {
				if !c.has(id, need) {
					errs = append(errs, fmt.Errorf("bank %s: %s requires %s", id, domain.ActionSinglePayment, need))
				}
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("catalog: invalid:\n%w", err)
	}
	return c, nil
}

func (c *Catalog) bindSubActions(bank domain.Bank, subs []domain.BankSubAction, reg *protocol.Registry) []error {
	var errs []error
	for _, s := range subs {
		if !slices.Contains(domain.SubActionKinds, s.Kind) {
			errs = append(errs, fmt.Errorf("bank %s: unknown sub-action kind %q", bank.ID, s.Kind))
			continue
		}
		key := subActionKey{bank: bank.ID, kind: s.Kind}
		if _, dup := c.subActions[key]; dup {
			errs = append(errs, fmt.Errorf("bank %s: duplicate sub-action %s", bank.ID, s.Kind))
			continue
		}

		h, err := bind(bank, string(s.Kind), s.Handler, reg)
		if err == nil && !protocol.SatisfiesSub(h, s.Kind) {
			err = fmt.Errorf("bank %s: handler %q cannot serve %s", bank.ID, s.Handler, s.Kind)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.subActions[key] = SubAction{Bank: bank, Kind: s.Kind, Handler: h}
	}

	for _, kind := range domain.SubActionKinds {
		if !slices.ContainsFunc(subs, func(s domain.BankSubAction) bool { return s.Kind == kind }) {
			errs = append(errs, fmt.Errorf("bank %s: %s is missing sub-action %s", bank.ID, domain.ActionAuthorization, kind))
		}
	}
	return errs
}

func bind(bank domain.Bank, kind, name string, reg *protocol.Registry) (protocol.Handler, error) {
	if name == "" {
		return nil, fmt.Errorf("bank %s: %s has no handler", bank.ID, kind)
	}
	h, ok := reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("bank %s: %s handler %q is not registered", bank.ID, kind, name)
	}
	if h.Protocol() != bank.Protocol {
		return nil, fmt.Errorf("bank %s: %s handler %q speaks %s, bank speaks %s", bank.ID, kind, name, h.Protocol(), bank.Protocol)
	}
	return h, nil
}

func (c *Catalog) has(bankID string, kind domain.ActionKind) bool {
	_, ok := c.actions[actionKey{bank: bankID, kind: kind}]
	return ok
}

// Bank returns a bank's reference data.
func (c *Catalog) Bank(id string) (domain.Bank, error) {
	b, ok := c.banks[id]
	if !ok {
		return domain.Bank{}, fmt.Errorf("%w: %s", ErrUnknownBank, id)
	}
	return b, nil
}

// Banks returns every bank ordered by id.
func (c *Catalog) Banks() []domain.Bank {
	out := make([]domain.Bank, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.banks[id])
	}
	return out
}

// Actions returns the action kinds a bank supports, in catalog order.
func (c *Catalog) Actions(bankID string) []domain.ActionKind {
	var out []domain.ActionKind
	for _, k := range domain.ActionKinds {
		if c.has(bankID, k) {
			out = append(out, k)
		}
	}
	return out
}

func (c *Catalog) Resolve(bankID string, kind domain.ActionKind) (Action, error) {
	if _, err := c.Bank(bankID); err != nil {
		return Action{}, err
	}
	a, ok := c.actions[actionKey{bank: bankID, kind: kind}]
	if !ok {
		return Action{}, fmt.Errorf("%w: %s at bank %s", ErrUnsupportedAction, kind, bankID)
	}
	return a, nil
}

func (c *Catalog) ResolveSubAction(bankID string, kind domain.SubActionKind) (SubAction, error) {
	if _, err := c.Bank(bankID); err != nil {
		return SubAction{}, err
	}
	s, ok := c.subActions[subActionKey{bank: bankID, kind: kind}]
	if !ok {
		return SubAction{}, fmt.Errorf("%w: %s at bank %s", ErrUnsupportedSubAction, kind, bankID)
	}
	return s, nil
}

// RequiresConsent reports whether kind at bankID needs a confirmed consent.
// Unknown actions report false.
func (c *Catalog) RequiresConsent(bankID string, kind domain.ActionKind) bool {
	return c.actions[actionKey{bank: bankID, kind: kind}].ConsentRequired
}

// ResolveAs resolves an action straight to the capability T.
func ResolveAs[T protocol.Handler](c *Catalog, bankID string, kind domain.ActionKind) (T, Action, error) {
	var zero T
	a, err := c.Resolve(bankID, kind)
	if err != nil {
		return zero, Action{}, err
	}
	h, ok := a.Handler.(T)
	if !ok {
		return zero, Action{}, fmt.Errorf("%w: %s at bank %s has no usable handler", ErrUnsupportedAction, kind, bankID)
	}
	return h, a, nil
}

// ResolveSubActionAs resolves a sub-action straight to the capability T.
func ResolveSubActionAs[T protocol.Handler](c *Catalog, bankID string, kind domain.SubActionKind) (T, SubAction, error) {
	var zero T
	s, err := c.ResolveSubAction(bankID, kind)
	if err != nil {
		return zero, SubAction{}, err
	}
	h, ok := s.Handler.(T)
	if !ok {
		return zero, SubAction{}, fmt.Errorf("%w: %s at bank %s has no usable handler", ErrUnsupportedSubAction, kind, bankID)
	}
	return h, s, nil
}
