package exchange

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
)

// ageHeader starts every binary age file.
const ageHeader = "age-encryption.org/v1\n"

// scryptWorkFactor is the log2 scrypt cost used when encrypting with a passphrase.
var scryptWorkFactor = 18

// ErrPassphraseRequired is returned by Decode for an encrypted document when no passphrase was given.
var ErrPassphraseRequired = errors.New("export is encrypted: passphrase required")

// Encode writes item as indented JSON. A non-empty passphrase encrypts the output with age.
func Encode(w io.Writer, item ExportedItem, passphrase string) error {
	if passphrase == "" {
		return writeJSON(w, item)
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(scryptWorkFactor)

	encWriter, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if err := writeJSON(encWriter, item); err != nil {
		return err
	}
	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	return nil
}

// Decode reads a document written by Encode. Encrypted input is detected by its header.
func Decode(r io.Reader, passphrase string) (ExportedItem, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(ageHeader))
	if err != nil && !errors.Is(err, io.EOF) {
		return ExportedItem{}, fmt.Errorf("reading export header: %w", err)
	}

	var src io.Reader = br
	if bytes.Equal(head, []byte(ageHeader)) {
		if passphrase == "" {
			return ExportedItem{}, ErrPassphraseRequired
		}
		identity, err := age.NewScryptIdentity(passphrase)
		if err != nil {
			return ExportedItem{}, fmt.Errorf("creating scrypt identity: %w", err)
		}
		if src, err = age.Decrypt(br, identity); err != nil {
			return ExportedItem{}, fmt.Errorf("decrypting export: %w", err)
		}
	}

	var item ExportedItem
	if err := json.NewDecoder(src).Decode(&item); err != nil {
		return ExportedItem{}, fmt.Errorf("decoding export: %w", err)
	}
	return item, nil
}

func writeJSON(w io.Writer, item ExportedItem) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(item); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}
