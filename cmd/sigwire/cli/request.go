package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plexarc/sigwire/internal/xmlval"
)

var decodeXML bool

var queryCmd = &cobra.Command{
	Use:   "query <service> <Action> [Name=Value ...]",
	Short: "Send a Query-protocol call (form POST, XML response)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		for _, arg := range args[2:] {
			name, value, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("parameter %q is not Name=Value", arg)
			}
			params.Add(name, value)
		}

		body, err := client.QueryRequest(cmd.Context(), args[0], args[1], params)
		if err != nil {
			return err
		}
		return printMaybeDecoded(body)
	},
}

var callCmd = &cobra.Command{
	Use:   "call <service> <Operation> [json-body]",
	Short: "Send a JSON-target-protocol call (X-Amz-Target header)",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := ""
		if len(args) == 3 {
			body = args[2]
		}

		resp, err := client.JSONRequest(cmd.Context(), args[0], args[1], body)
		if err != nil {
			return err
		}
		printBody(resp)
		return nil
	},
}

var restCmd = &cobra.Command{
	Use:   "rest <service> <method> <path> [body]",
	Short: "Send a REST-JSON call",
	Args:  cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		var body []byte
		if len(args) == 4 {
			body = []byte(args[3])
		}

		resp, err := client.RestJSONRequest(cmd.Context(), args[0], args[1], args[2], body)
		if err != nil {
			return err
		}
		printBody(resp)
		return nil
	},
}

var restXMLCmd = &cobra.Command{
	Use:   "rest-xml <service> <method> <path> [body]",
	Short: "Send a REST-XML call",
	Args:  cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		var body []byte
		if len(args) == 4 {
			body = []byte(args[3])
		}

		resp, err := client.RestXMLRequest(cmd.Context(), args[0], args[1], args[2], body)
		if err != nil {
			return err
		}
		return printMaybeDecoded(resp)
	},
}

// printMaybeDecoded prints an XML body raw, or normalized to JSON when
// --decode is set.
func printMaybeDecoded(body string) error {
	if !decodeXML {
		printBody(body)
		return nil
	}

	tree, err := xmlval.Parse([]byte(body))
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return err
	}
	printBody(string(out))
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{queryCmd, restXMLCmd} {
		cmd.Flags().BoolVar(&decodeXML, "decode", false, "normalize the XML response to JSON")
	}
	rootCmd.AddCommand(queryCmd, callCmd, restCmd, restXMLCmd)
}
