// Command hlpcat opens a Windows Help (.HLP) archive and exposes its pages
// as RTF on the command line: a thin driver over internal/hlpfile,
// internal/rtf and internal/hlpimage, with an internal/pagecache index for
// repeat lookups.
package main

import (
	"log"
	"os"

	"hlpcat/internal/cli"
	"hlpcat/internal/config"
)

func main() {
	configPath := "./hlpcat.json"
	cm, err := config.NewConfigManager(configPath)
	if err != nil {
		log.Fatalf("failed to create config manager: %v", err)
	}
	if err := cm.Load(); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := cm.Get()

	cli.Dispatch(os.Args[1:], cfg)
}
