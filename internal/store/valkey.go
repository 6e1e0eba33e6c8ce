// internal/store/valkey.go
//
// Valkey (Redis protocol) implementation of the round session Store, for
// running several server processes against shared session state.
//
// Each session is one JSON string under "<prefix><roundID>" with a TTL that
// is refreshed on every Save.

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/valkey-io/valkey-go"
)

// DefaultKeyPrefix namespaces session keys.
const DefaultKeyPrefix = "hangman:round:"

// ValkeyConfig configures NewValkeyStore.
type ValkeyConfig struct {
	Addr         string
	Password     string
	DB           int
	TTL          time.Duration // 0 = no expiry
	KeyPrefix    string        // defaults to DefaultKeyPrefix
	DisableCache bool          // required for miniredis
}

// Valkey is a Store backed by a valkey.Client.
type Valkey struct {
	client valkey.Client
	ttl    time.Duration
	prefix string
}

// NewValkeyClient dials addr and verifies the connection with PING.
func NewValkeyClient(ctx context.Context, cfg ValkeyConfig) (valkey.Client, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("valkey addr is empty")
	}
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{addr},
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: cfg.DisableCache,
	})
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}
	return client, nil
}

// NewValkeyStore wraps an existing client. The caller owns the client and
// closes it on shutdown.
func NewValkeyStore(client valkey.Client, cfg ValkeyConfig) *Valkey {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Valkey{client: client, ttl: cfg.TTL, prefix: prefix}
}

func (v *Valkey) key(id string) string { return v.prefix + id }

// Save serializes the session and writes it with the configured TTL.
func (v *Valkey) Save(ctx context.Context, s *Session) error {
	payload, err := json.Marshal(toRecord(s))
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}
	var cmd valkey.Completed
	set := v.client.B().Set().Key(v.key(s.Round.ID)).Value(string(payload))
	if v.ttl > 0 {
		cmd = set.Ex(v.ttl).Build()
	} else {
		cmd = set.Build()
	}
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	log.Debug().Str("roundId", s.Round.ID).Msg("session saved")
	return nil
}

// Get loads and restores a session.
func (v *Valkey) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := v.client.Do(ctx, v.client.B().Get().Key(v.key(id)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session load: %w", err)
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	return rec.session()
}

// Delete removes the session key.
func (v *Valkey) Delete(ctx context.Context, id string) error {
	if err := v.client.Do(ctx, v.client.B().Del().Key(v.key(id)).Build()).Error(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
