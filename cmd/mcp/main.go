// Standalone entrypoint for the automation server, for deployments that want
// the HTTP boundary without the full CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/deskpilot/internal/config"
	"github.com/xkilldash9x/deskpilot/internal/mcp"
	"github.com/xkilldash9x/deskpilot/internal/observability"
)

func main() {
	host := flag.String("host", "127.0.0.1", "host address to listen on (the API drives a local desktop; keep it loopback)")
	port := flag.Int("port", 8420, "port to listen on")
	cfgFile := flag.String("config", "", "config file path (default ./config.yaml)")
	flag.Parse()

	v := viper.New()
	config.SetDefaults(v)
	if *cfgFile != "" {
		v.SetConfigFile(*cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("DESKPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}
	v.Set("server.addr", fmt.Sprintf("%s:%d", *host, *port))

	cfg, err := config.NewFromViper(v)
	if err != nil {
		log.Printf("Failed to process configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	server, err := mcp.NewServer(cfg, logger)
	if err != nil {
		log.Printf("Failed to initialize server: %v\n", err)
		os.Exit(1)
	}
	if err := server.Start(context.Background()); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}
