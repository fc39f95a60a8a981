package cmd

import (
	"encoding/base64"
	"fmt"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"

	"github.com/example/trip-planner/internal/auth"
)

func newKeysCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Generate COOKIE_HASH_KEY and COOKIE_BLOCK_KEY values (base64), and API_TOKEN_HASH for --token",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "export COOKIE_HASH_KEY=%s\n", encodeKey(securecookie.GenerateRandomKey(32)))
			fmt.Fprintf(out, "export COOKIE_BLOCK_KEY=%s\n", encodeKey(securecookie.GenerateRandomKey(32)))
			if token == "" {
				return nil
			}
			hash, err := auth.HashToken(token)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "export API_TOKEN_HASH='%s'\n", hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "API bearer token to hash")
	return cmd
}

func encodeKey(b []byte) string { return base64.StdEncoding.EncodeToString(b) }
