// Package otp issues and checks the one-time codes that activate new accounts.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidCode is returned when the submitted code does not match the stored one.
var ErrInvalidCode = errors.New("invalid or expired otp")

const (
	codeMin = 10000
	codeMax = 99999
)

// Generate returns a random five digit code.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}

// Mailer delivers a code to its owner.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

// LogMailer writes codes to the log instead of sending mail.
type LogMailer struct {
	From   string
	Logger *zap.Logger
}

func (m LogMailer) SendOTP(_ context.Context, email, code string) error {
	m.Logger.Info("activation code issued",
		zap.String("from", m.From),
		zap.String("to", email),
		zap.String("otp", code))
	return nil
}

// Issuer ties code generation, storage and delivery together.
type Issuer struct {
	store    Store
	mailer   Mailer
	ttl      time.Duration
	generate func() (string, error)
}

func NewIssuer(store Store, mailer Mailer, ttl time.Duration) *Issuer {
	return &Issuer{store: store, mailer: mailer, ttl: ttl, generate: Generate}
}

func key(email string) string {
	return "otp:" + strings.ToLower(email)
}

// Issue stores a fresh code for email, replacing any previous one, and sends it.
func (i *Issuer) Issue(ctx context.Context, email string) error {
	code, err := i.generate()
	if err != nil {
		return err
	}
	if err := i.store.Set(ctx, key(email), code, i.ttl); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	if err := i.mailer.SendOTP(ctx, email, code); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

// Verify checks code against the stored one and consumes it on success.
func (i *Issuer) Verify(ctx context.Context, email, code string) error {
	stored, err := i.store.Get(ctx, key(email))
	if err != nil {
		if errors.Is(err, ErrMiss) {
			return ErrInvalidCode
		}
		return fmt.Errorf("load otp: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrInvalidCode
	}
	if err := i.store.Delete(ctx, key(email)); err != nil {
		return fmt.Errorf("clear otp: %w", err)
	}
	return nil
}
