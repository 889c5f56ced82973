package types

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

const discriminatorLength = 8

var (
	// ConfigDiscriminator prefixes every encoded Config record.
	ConfigDiscriminator = accountDiscriminator("Timelock")
	// BatchDiscriminator prefixes every encoded Batch record.
	BatchDiscriminator = accountDiscriminator("TransactionBatch")

	// ErrInvalidDiscriminator is returned when a record does not start with the expected
	// account discriminator.
	ErrInvalidDiscriminator = errors.New("invalid account discriminator")
)

func accountDiscriminator(name string) [discriminatorLength]byte {
	sum := sha256.Sum256([]byte("account:" + name))

	var d [discriminatorLength]byte
	copy(d[:], sum[:discriminatorLength])

	return d
}

// MarshalConfig encodes a Config record as discriminator || borsh(config).
func MarshalConfig(cfg Config) ([]byte, error) {
	return marshalAccount(ConfigDiscriminator, cfg)
}

// UnmarshalConfig decodes a record produced by MarshalConfig.
func UnmarshalConfig(data []byte) (Config, error) {
	var cfg Config
	if err := unmarshalAccount(ConfigDiscriminator, data, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// MarshalBatch encodes a Batch record as discriminator || borsh(batch).
func MarshalBatch(batch Batch) ([]byte, error) {
	return marshalAccount(BatchDiscriminator, batch)
}

// UnmarshalBatch decodes a record produced by MarshalBatch.
func UnmarshalBatch(data []byte) (Batch, error) {
	var batch Batch
	if err := unmarshalAccount(BatchDiscriminator, data, &batch); err != nil {
		return Batch{}, err
	}

	return batch, nil
}

func marshalAccount(discriminator [discriminatorLength]byte, v any) ([]byte, error) {
	body, err := bin.MarshalBorsh(v)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal borsh: %w", err)
	}

	out := make([]byte, 0, discriminatorLength+len(body))
	out = append(out, discriminator[:]...)

	return append(out, body...), nil
}

func unmarshalAccount(discriminator [discriminatorLength]byte, data []byte, v any) error {
	if len(data) < discriminatorLength || !bytes.Equal(data[:discriminatorLength], discriminator[:]) {
		return ErrInvalidDiscriminator
	}
	if err := bin.UnmarshalBorsh(v, data[discriminatorLength:]); err != nil {
		return fmt.Errorf("unable to unmarshal borsh: %w", err)
	}

	return nil
}
