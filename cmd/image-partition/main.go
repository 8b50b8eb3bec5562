package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/image-partition-mcp/internal/config"
	"github.com/ironsheep/image-partition-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("image-partition %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		case "render":
			if err := runRender(os.Args[2:]); err != nil {
				log.Fatalf("Render error: %v", err)
			}
			return
		case "serve":
		default:
			fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
			printUsage()
			os.Exit(2)
		}
	}

	cfg, err := config.LoadConfig(os.Getenv(config.EnvPath))
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if level := os.Getenv("IMAGE_PARTITION_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if cfg.Debug() {
		log.Printf("Image Partition MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printUsage() {
	fmt.Println("image-partition - split images into color-homogeneous rectangles")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  image-partition [serve]           Run the MCP server on stdin/stdout")
	fmt.Println("  image-partition render [flags]    Render partitions of one image to files")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Run 'image-partition render -h' for render flags.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  IMAGE_PARTITION_CONFIG=<file>       YAML config for the server")
	fmt.Println("  IMAGE_PARTITION_LOG_LEVEL=debug     Enable debug logging")
	fmt.Println()
	fmt.Println("The server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
