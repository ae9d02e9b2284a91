package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/bankgate/pkg/cryptox"
	"github.com/aussiebroadwan/bankgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "bankgate-test"

func newSigner(t *testing.T, kid string) *jwtx.EdDSASigner {
	t.Helper()
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	s, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	return s
}

func TestSignAndVerify(t *testing.T) {
	signer := newSigner(t, "k1")
	keys := jwtx.NewKeySet()
	require.False(t, keys.IsReady())
	keys.AddSigner(signer)
	require.True(t, keys.IsReady())

	now := time.Now().UTC()
	token, err := signer.Sign(jwtx.NewSessionClaims("user-1", "session-1", "alice", testIssuer, []string{"bankgate"}, time.Hour, now))
	require.NoError(t, err)

	got, err := jwtx.NewVerifierEdDSA(keys, testIssuer, []string{"bankgate"}).Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "session-1", got.SID)
	require.Equal(t, "alice", got.Username)
}

func TestVerifyRejects(t *testing.T) {
	signer := newSigner(t, "k1")
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)
	now := time.Now().UTC()

	tests := []struct {
		name     string
		claims   jwtx.Claims
		signer   *jwtx.EdDSASigner
		issuer   string
		audience []string
		wantErr  error
	}{
		{
			name:    "expired",
			claims:  jwtx.NewSessionClaims("u", "s", "", testIssuer, nil, time.Minute, now.Add(-time.Hour)),
			signer:  signer,
			issuer:  testIssuer,
			wantErr: jwtx.ErrExpired,
		},
		{
			name:    "wrong issuer",
			claims:  jwtx.NewSessionClaims("u", "s", "", "someone-else", nil, time.Minute, now),
			signer:  signer,
			issuer:  testIssuer,
			wantErr: jwtx.ErrIssuer,
		},
		{
			name:     "wrong audience",
			claims:   jwtx.NewSessionClaims("u", "s", "", testIssuer, []string{"other"}, time.Minute, now),
			signer:   signer,
			issuer:   testIssuer,
			audience: []string{"bankgate"},
			wantErr:  jwtx.ErrAudience,
		},
		{
			name:    "unknown key",
			claims:  jwtx.NewSessionClaims("u", "s", "", testIssuer, nil, time.Minute, now),
			signer:  newSigner(t, "k2"),
			issuer:  testIssuer,
			wantErr: jwtx.ErrUnknownKID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := tt.signer.Sign(tt.claims)
			require.NoError(t, err)

			_, err = jwtx.NewVerifierEdDSA(keys, tt.issuer, tt.audience).Verify(token)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerifyGarbage(t *testing.T) {
	keys := jwtx.NewKeySet()
	keys.AddSigner(newSigner(t, "k1"))

	_, err := jwtx.NewVerifierEdDSA(keys, "", nil).Verify("not.a.jwt")
	require.Error(t, err)
}

func TestNewSignerEdDSARejectsBadPEM(t *testing.T) {
	_, err := jwtx.NewSignerEdDSA("k", []byte("nope"))
	require.Error(t, err)
}
