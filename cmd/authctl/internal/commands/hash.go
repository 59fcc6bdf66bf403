package commands

import (
	"fmt"

	"github.com/spec-kit/lottery-auth/internal/auth"
)

// HashCmd prints the digest and salt that registration would store, for seeding fixtures.
type HashCmd struct {
	Password string `arg:"" help:"Password to hash"`
	Salt     string `help:"Hex salt; generated when empty"`
	Legacy   bool   `help:"Produce an unsalted legacy SHA-256 digest"`
}

func (h *HashCmd) Run(globals *Globals) error {
	if h.Legacy {
		fmt.Fprintf(globals.Out, "scheme=%s\nsalt=\ndigest=%s\n", auth.SchemeLegacySHA256, auth.LegacyDigest(h.Password))
		return nil
	}

	salt := h.Salt
	if salt == "" {
		var err error
		if salt, err = auth.NewSalt(); err != nil {
			return err
		}
	}
	fmt.Fprintf(globals.Out, "scheme=%s\nsalt=%s\ndigest=%s\n", auth.SchemeSaltedPBKDF2, salt, auth.HashPassword(h.Password, salt))
	return nil
}
