package catalog

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol/protocoltest"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

// bare implements no capability at all.
type bare struct{ name string }

func (b bare) Name() string                    { return b.name }
func (b bare) Protocol() domain.ProtocolFamily { return domain.ProtocolREST }

func newRegistry(t *testing.T) *protocol.Registry {
	t.Helper()
	reg := protocol.NewRegistry()
	require.NoError(t, (&protocoltest.Bank{Family: domain.ProtocolREST}).Register(reg))
	require.NoError(t, (&protocoltest.Bank{Family: domain.ProtocolMessage}).Register(reg))
	return reg
}

func restBank(id string) domain.Bank {
	return domain.Bank{ID: id, Name: id, Protocol: domain.ProtocolREST, Endpoint: "https://" + id + ".example"}
}

func withBank(id string, rows []domain.BankAction) []domain.BankAction {
	for i := range rows {
		rows[i].BankID = id
	}
	return rows
}

func TestBuildStandard(t *testing.T) {
	reg := newRegistry(t)

	c, err := Build(
		[]domain.Bank{restBank("bank-a")},
		withBank("bank-a", StandardActions(domain.ProtocolREST)),
		reg,
	)
	require.NoError(t, err)

	require.Equal(t, domain.ActionKinds, c.Actions("bank-a"))
	require.True(t, c.RequiresConsent("bank-a", domain.ActionListAccounts))
	require.False(t, c.RequiresConsent("bank-a", domain.ActionSinglePayment))

	initiator, a, err := ResolveAs[protocol.PaymentInitiator](c, "bank-a", domain.ActionSinglePayment)
	require.NoError(t, err)
	require.Equal(t, "rest.single_payment", initiator.Name())
	require.Equal(t, "bank-a", a.Bank.ID)

	redirect, _, err := ResolveSubActionAs[protocol.RedirectHandler](c, "bank-a", domain.SubActionFromASPSPRedirect)
	require.NoError(t, err)
	require.Equal(t, "rest.from_aspsp_redirect", redirect.Name())

	_, err = c.Resolve("nope", domain.ActionSinglePayment)
	require.ErrorIs(t, err, ErrUnknownBank)
}

func TestBuildMessageProfileSkipsConsent(t *testing.T) {
	reg := newRegistry(t)
	bank := domain.Bank{ID: "legacy", Protocol: domain.ProtocolMessage, Endpoint: "legacy:8583"}

	c, err := Build([]domain.Bank{bank}, withBank("legacy", StandardActions(domain.ProtocolMessage)), reg)
	require.NoError(t, err)
	require.False(t, c.RequiresConsent("legacy", domain.ActionListAccounts))
}

func TestResolveUnsupported(t *testing.T) {
	reg := newRegistry(t)

	rows := withBank("bank-b", []domain.BankAction{
		{Kind: domain.ActionListAccounts, Handler: "rest.list_accounts"},
	})
	c, err := Build([]domain.Bank{restBank("bank-b")}, rows, reg)
	require.NoError(t, err)

	_, err = c.Resolve("bank-b", domain.ActionSinglePayment)
	require.ErrorIs(t, err, ErrUnsupportedAction)

	_, _, err = ResolveAs[protocol.PaymentInitiator](c, "bank-b", domain.ActionSinglePayment)
	require.ErrorIs(t, err, ErrUnsupportedAction)

	_, err = c.ResolveSubAction("bank-b", domain.SubActionDenyAuthorization)
	require.ErrorIs(t, err, ErrUnsupportedSubAction)
}

func TestBuildRejectsInvalidRows(t *testing.T) {
	reg := newRegistry(t)
	require.NoError(t, reg.Register(bare{name: "rest.bare"}))

	drop := func(kind domain.SubActionKind) []domain.BankAction {
		rows := StandardActions(domain.ProtocolREST)
		for i := range rows {
			if rows[i].Kind != domain.ActionAuthorization {
				continue
			}
			subs := rows[i].SubActions[:0]
			for _, s := range rows[i].SubActions {
				if s.Kind != kind {
					subs = append(subs, s)
				}
			}
			rows[i].SubActions = subs
		}
		return rows
	}

	without := func(kind domain.ActionKind) []domain.BankAction {
		return removeAction(StandardActions(domain.ProtocolREST), kind)
	}

	tests := []struct {
		name    string
		rows    []domain.BankAction
		wantErr string
	}{
		{
			name:    "missing sub-action",
			rows:    drop(domain.SubActionDenyAuthorization),
			wantErr: "missing sub-action DENY_AUTHORIZATION",
		},
		{
			name:    "payment without authorization",
			rows:    without(domain.ActionAuthorization),
			wantErr: "SINGLE_PAYMENT requires AUTHORIZATION",
		},
		{
			name:    "payment without status",
			rows:    without(domain.ActionGetPaymentStatus),
			wantErr: "SINGLE_PAYMENT requires GET_PAYMENT_STATUS",
		},
		{
			name:    "unregistered handler",
			rows:    []domain.BankAction{{Kind: domain.ActionListAccounts, Handler: "rest.nope"}},
			wantErr: `"rest.nope" is not registered`,
		},
		{
			name:    "protocol mismatch",
			rows:    []domain.BankAction{{Kind: domain.ActionListAccounts, Handler: "message.list_accounts"}},
			wantErr: "speaks message, bank speaks rest",
		},
		{
			name:    "handler lacks capability",
			rows:    []domain.BankAction{{Kind: domain.ActionListAccounts, Handler: "rest.bare"}},
			wantErr: "cannot serve LIST_ACCOUNTS",
		},
		{
			name:    "authorization with handler",
			rows:    []domain.BankAction{{Kind: domain.ActionAuthorization, Handler: "rest.bare", SubActions: StandardActions(domain.ProtocolREST)[2].SubActions}},
			wantErr: "must not name a handler",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build([]domain.Bank{restBank("bank-a")}, withBank("bank-a", tt.rows), reg)
			require.Error(t, err)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBuildJoinsAllProblems(t *testing.T) {
	reg := newRegistry(t)

	rows := withBank("bank-a", []domain.BankAction{
		{Kind: domain.ActionSinglePayment, Handler: "rest.single_payment"},
		{Kind: domain.ActionListAccounts, Handler: "rest.nope"},
	})
	_, err := Build([]domain.Bank{restBank("bank-a")}, rows, reg)
	require.ErrorContains(t, err, "requires AUTHORIZATION")
	require.ErrorContains(t, err, "requires GET_PAYMENT_STATUS")
	require.ErrorContains(t, err, `"rest.nope" is not registered`)
}

func TestLoadFromStore(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	f, err := Parse([]byte(`
banks:
  - id: bank-a
    name: Bank A
    protocol: rest
    endpoint: https://bank-a.example
    profile: standard
  - id: bank-b
    name: Bank B
    protocol: rest
    endpoint: https://bank-b.example
    profile: standard
    omit: [SINGLE_PAYMENT]
`))
	require.NoError(t, err)
	require.NoError(t, Import(ctx, s, reg, f))

	c, err := Load(ctx, s, reg)
	require.NoError(t, err)
	require.Len(t, c.Banks(), 2)

	_, err = c.Resolve("bank-a", domain.ActionSinglePayment)
	require.NoError(t, err)
	_, err = c.Resolve("bank-b", domain.ActionSinglePayment)
	require.ErrorIs(t, err, ErrUnsupportedAction)

	t.Run("invalid seed writes nothing", func(t *testing.T) {
		bad, err := Parse([]byte(`
banks:
  - id: bank-c
    protocol: rest
    endpoint: https://bank-c.example
    profile: standard
    omit: [AUTHORIZATION]
`))
		require.NoError(t, err)
		require.Error(t, Import(ctx, s, reg, bad))

		banks, err := s.Banks().ListBanks(ctx)
		require.NoError(t, err)
		require.Len(t, banks, 2)
	})
}

func TestParseSeed(t *testing.T) {
	t.Setenv("LEGACY_ADDR", "legacy:8583")

	f, err := Parse([]byte(`
banks:
  - id: legacy
    name: Legacy
    protocol: message
    endpoint: ${LEGACY_ADDR}
    actions:
      - kind: LIST_ACCOUNTS
        handler: message.list_accounts
        consent_required: true
`))
	require.NoError(t, err)

	banks, actions, err := f.Rows()
	require.NoError(t, err)
	require.Equal(t, "legacy:8583", banks[0].Endpoint)
	require.Len(t, actions[0], 1)
	require.Equal(t, "legacy", actions[0][0].BankID)
	require.True(t, actions[0][0].ConsentRequired)

	_, err = Parse([]byte("banks:\n  - id: x\n    colour: red\n"))
	require.Error(t, err)

	_, _, err = File{Banks: []BankSpec{{ID: "x", Protocol: "soap"}}}.Rows()
	require.ErrorContains(t, err, "unknown protocol")
}
