package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: mcp-client <server-command> [<args>]")
		fmt.Fprintln(os.Stderr, "Example: mcp-client ./chemsafe")
		os.Exit(2)
	}

	ctx := context.Background()

	// Start the server as a subprocess
	cmd := exec.Command(args[0], args[1:]...)
	transport := &mcp.CommandTransport{Command: cmd}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "chemsafe-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer session.Close()

	fmt.Println("Connected to ChemSafe MCP Server!")
	fmt.Println("Available commands:")
	fmt.Println("  /tools                        - List available tools")
	fmt.Println("  /rebuild                      - Rebuild the graph from the store")
	fmt.Println("  /incompatible <cas> [depth]   - Find incompatible chemicals")
	fmt.Println("  /chains <cas> [depth]         - Enumerate reaction chains")
	fmt.Println("  /transitive <cas> [depth]     - Recursive closure via the store")
	fmt.Println("  /clusters [min]               - Chemicals with many incompatibilities")
	fmt.Println("  /shared <cas1> <cas2>         - Shared incompatibilities")
	fmt.Println("  /similar <cas> <criterion>    - Similar chemicals")
	fmt.Println("  /stats                        - Graph statistics and coverage")
	fmt.Println("  /graph <cypher>               - Execute Cypher on the mirror")
	fmt.Println("  /exit                         - Exit the client")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch {
		case input == "/exit":
			fmt.Println("Goodbye!")
			return

		case input == "/tools":
			listTools(ctx, session)

		case input == "/rebuild":
			callTool(ctx, session, "rebuild_graph", map[string]any{})

		case strings.HasPrefix(input, "/incompatible"):
			callTool(ctx, session, "find_incompatible", casDepthArgs(input))

		case strings.HasPrefix(input, "/chains"):
			callTool(ctx, session, "find_reaction_chains", casDepthArgs(input))

		case strings.HasPrefix(input, "/transitive"):
			callTool(ctx, session, "transitive_incompatibilities", casDepthArgs(input))

		case strings.HasPrefix(input, "/clusters"):
			parts := strings.Fields(input)
			args := map[string]any{}
			if len(parts) > 1 {
				if n, err := strconv.Atoi(parts[1]); err == nil {
					args["min_connections"] = n
				}
			}
			callTool(ctx, session, "chemical_clusters", args)

		case strings.HasPrefix(input, "/shared"):
			parts := strings.Fields(input)
			if len(parts) < 3 {
				fmt.Println("Usage: /shared <cas1> <cas2>")
				continue
			}
			callTool(ctx, session, "shared_incompatibilities", map[string]any{
				"cas1": parts[1],
				"cas2": parts[2],
			})

		case strings.HasPrefix(input, "/similar"):
			parts := strings.Fields(input)
			if len(parts) < 3 {
				fmt.Println("Usage: /similar <cas> <ghs_class|supplier|hazard_profile>")
				continue
			}
			callTool(ctx, session, "similar_chemicals", map[string]any{
				"cas":       parts[1],
				"criterion": parts[2],
			})

		case input == "/stats":
			callTool(ctx, session, "graph_stats", map[string]any{})

		case strings.HasPrefix(input, "/graph "):
			cypher := strings.TrimPrefix(input, "/graph ")
			callTool(ctx, session, "query_graph", map[string]any{
				"cypher": cypher,
			})

		default:
			fmt.Println("Unknown command; try /tools")
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Scanner error: %v", err)
	}
}

func casDepthArgs(input string) map[string]any {
	parts := strings.Fields(input)
	args := map[string]any{}
	if len(parts) > 1 {
		args["cas"] = parts[1]
	}
	if len(parts) > 2 {
		if n, err := strconv.Atoi(parts[2]); err == nil {
			args["max_depth"] = n
		}
	}
	return args
}

func listTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("Available Tools:")
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			log.Printf("Error listing tools: %v", err)
			return
		}
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Println()
}

func callTool(ctx context.Context, session *mcp.ClientSession, toolName string, args map[string]any) {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		log.Printf("Error calling tool: %v", err)
		return
	}

	printResult(result)
}

func printResult(result *mcp.CallToolResult) {
	if result.IsError {
		fmt.Printf("Error: ")
	} else {
		fmt.Printf("Result: ")
	}

	for _, content := range result.Content {
		switch v := content.(type) {
		case *mcp.TextContent:
			fmt.Println(v.Text)
		default:
			jsonData, err := json.MarshalIndent(content, "", "  ")
			if err != nil {
				fmt.Printf("%+v\n", content)
			} else {
				fmt.Println(string(jsonData))
			}
		}
	}
	fmt.Println()
}
