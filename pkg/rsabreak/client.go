package rsabreak

import (
	"context"
	"io"
	"math/big"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/rsa-weakkey/pkg/rsakey"
)

// Client provides a high-level API for factoring challenge moduli and
// recovering their private keys.
type Client struct {
	strategy FactorStrategy
	parser   TargetParser
}

// NewClient creates a new client with default settings. The default
// strategy writes no progress output; use WithStrategy to change that.
func NewClient() *Client {
	return &Client{
		strategy: NewSmartStrategy().WithOutput(io.Discard),
		parser:   &JSONParser{},
	}
}

// WithStrategy sets a custom factoring strategy.
func (c *Client) WithStrategy(strategy FactorStrategy) *Client {
	c.strategy = strategy
	return c
}

// WithParser sets a custom target parser.
func (c *Client) WithParser(parser TargetParser) *Client {
	c.parser = parser
	return c
}

// RecoverKeys factors the targets in a file and derives their private keys.
//
// Args:
//   - ctx: Context for cancellation.
//   - source: Path to the target file, read by the configured parser.
//
// Returns:
//   - One RecoveryResult per factored target, error if none were factored.
//     Check RecoveryResult.Err before using PrivateKey.
func (c *Client) RecoverKeys(ctx context.Context, source string) ([]*RecoveryResult, error) {
	targets, err := c.parser.ParseTargets(source)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse targets")
	}
	return c.RecoverKeysFromTargets(ctx, targets)
}

// RecoverKeysFromTargets factors in-memory targets. For every factored
// target the private key is derived from its exponent (rsakey.DefaultExponent
// when unset) and C is decrypted when present. A target whose key cannot be
// derived keeps its factors and reports the failure in RecoveryResult.Err;
// the other results are unaffected.
func (c *Client) RecoverKeysFromTargets(ctx context.Context, targets []*Target) ([]*RecoveryResult, error) {
	if len(targets) == 0 {
		return nil, errors.New("need at least 1 target, got 0")
	}
	for i, t := range targets {
		if !validTarget(t) {
			return nil, errors.Wrapf(ErrInvalidModulus, "target %d", i)
		}
	}

	results := c.strategy.Search(ctx, targets)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, errors.Errorf("failed to factor any of %d targets with %s", len(targets), c.strategy.Name())
	}

	for _, r := range results {
		if err := completeResult(r, targets[r.TargetIndex]); err != nil {
			r.Err = errors.Wrapf(err, "target %d (%s)", r.TargetIndex, r.Label)
		}
	}
	return results, nil
}

// RecoverKey factors a single modulus. e and ct may be nil.
func (c *Client) RecoverKey(ctx context.Context, n, e, ct *big.Int) (*RecoveryResult, error) {
	results, err := c.RecoverKeysFromTargets(ctx, []*Target{{Label: "target_0", N: n, E: e, C: ct}})
	if err != nil {
		return nil, err
	}
	if results[0].Err != nil {
		return nil, results[0].Err
	}
	return results[0], nil
}

// completeResult derives the private key for r and decrypts the target's
// ciphertext with it.
func completeResult(r *RecoveryResult, t *Target) error {
	e := t.E
	if e == nil {
		e = rsakey.DefaultExponent
	}

	key, err := rsakey.NewPrivateKey(e, r.Factors)
	if err != nil {
		return errors.Wrap(err, "failed to derive private key")
	}
	if key.N.Cmp(t.N) != 0 {
		return errors.Errorf("factors multiply to %s, not the target modulus", key.N)
	}
	r.PrivateKey = key

	if t.C != nil {
		m, err := key.Decrypt(t.C)
		if err != nil {
			return errors.Wrap(err, "failed to decrypt ciphertext")
		}
		r.Plaintext = m
	}
	return nil
}
