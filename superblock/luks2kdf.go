// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package superblock

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

// DeriveKeyslotKey derives the area key for a keyslot whose KDF type is
// "pbkdf2", given the correct passphrase. It performs no decryption itself:
// a caller still has to use the derived key against Area.Encryption to
// unwrap the keyslot's stored key material. Keyslots using argon2i/argon2id
// are not supported here; DeriveKeyslotKey returns ErrUnsupportedFeature for
// those.
func DeriveKeyslotKey(passphrase string, slot Luks2Keyslot) ([]byte, error) {
	if slot.KDF.Type != "pbkdf2" {
		return nil, ErrUnsupportedFeature
	}

	salt, err := base64.StdEncoding.DecodeString(slot.KDF.Salt)
	if err != nil {
		return nil, ErrInvalidSuperblock
	}

	return pbkdf2.Key([]byte(passphrase), salt, int(slot.KDF.Iterations), int(slot.Area.KeySize), sha256.New), nil
}
