package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/plexarc/sigwire/internal/xmlval"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List credential profiles and their regions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range resolver.Profiles() {
			if region := resolver.ProfileRegion(name); region != "" {
				fmt.Printf("%s\t%s\n", name, region)
			} else {
				fmt.Println(name)
			}
		}
		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Normalize an XML document to JSON (stdin if no file)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return err
		}

		tree, err := xmlval.Parse(data)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return err
		}
		printBody(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd, decodeCmd)
}
