package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/subpic-mcp/internal/logging"
	"github.com/ironsheep/subpic-mcp/internal/server"
	"github.com/ironsheep/subpic-mcp/internal/subpic"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version, --help and the extract subcommand
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("subpic-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Backend:    %s\n", subpic.Backend)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "extract":
			log := logging.FromEnv()
			if err := runExtract(os.Args[2:], os.Stdout, log); err != nil {
				log.WithError(err).Error("extract failed")
				os.Exit(1)
			}
			return
		}
	}

	// Logging goes to stderr; stdout is for the MCP protocol
	log := logging.FromEnv()
	log.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
		"backend": subpic.Backend,
	}).Debug("starting subpic MCP server")

	if Version != "dev" {
		server.Version = Version
	}
	srv := server.New(log)
	if err := srv.Run(); err != nil {
		log.WithError(err).Fatal("server error")
	}
}

func printHelp() {
	fmt.Println("subpic-mcp - find and cut out the rectangular pictures inside an image")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  subpic-mcp [options]                       Run the MCP server on stdin/stdout")
	fmt.Println("  subpic-mcp extract [flags] image...        Extract sub-pictures to files")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Run 'subpic-mcp extract -h' for the extract flags.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=debug    Enable debug logging\n", logging.EnvLevel)
	fmt.Println()
	fmt.Println("In server mode it communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
