// Command vsenginectl is a thin wire-protocol client built on a Cobra
// root command with one subcommand per verb.
package main

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vsengine/internal/wire"
)

var addr string

func main() {
	root := &cobra.Command{
		Use:   "vsenginectl",
		Short: "Command-line client for the vsengine server",
	}
	root.PersistentFlags().StringVar(&addr, "addr", "127.0.0.1:1234", "server address")

	root.AddCommand(
		simpleCommand("create-collection", "create_collection", 1, "<name>"),
		simpleCommand("add", "add_to_collection", 3, "<collection> <key> <csv-floats>"),
		simpleCommand("query", "query", 3, "<collection> <csv-floats> <k>"),
		simpleCommand("query-alg", "queryAlg", 3, "<algName> <csv-floats> <k>"),
		simpleCommand("hnsw", "HNSW", 6, "<collection> <algName> <mL> <d> <numLayers> <efc>"),
		simpleCommand("vamana", "Vamana", 5, "<collection> <algName> <d> <R> <alpha>"),
		simpleCommand("ifi", "IFI", 5, "<collection> <algName> <d> <numCentroids> <retrainThr>"),
		simpleCommand("annoy", "ANNOY", 7, "<collection> <algName> <d> <threshold> <bucketThr> <maxDepth> <nTrees>"),
		simpleCommand("collections", "Collections", 0, ""),
		simpleCommand("algorithms", "Algorithms", 0, ""),
		simpleCommand("exit", "exit", 0, ""),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func simpleCommand(use, verb string, nargs int, argsUsage string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   strings.TrimSpace(use + " " + argsUsage),
		Short: fmt.Sprintf("send a %q command", verb),
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendCommand(verb, args)
		},
	}
	return cmd
}

func sendCommand(verb string, args []string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	argv := append([]string{verb}, args...)
	frame, err := wire.EncodeRequest(argv)
	if err != nil {
		return err
	}
	if _, err := conn.Write(frame); err != nil {
		return err
	}

	code, payload, err := wire.ReadResponse(conn)
	if err != nil {
		return err
	}

	switch code {
	case wire.OK:
		if len(payload) > 0 {
			fmt.Println(string(payload))
		}
		return nil
	case wire.NotFound:
		return fmt.Errorf("not found")
	default:
		return fmt.Errorf("error")
	}
}
