package main

import (
	"context"
	"log"
	"time"

	"github.com/boardhaven/commerce/config"
	"github.com/boardhaven/commerce/tracing"
)

func main() {

	cfg, err := config.ProvideApplicationConfig()
	if err != nil {
		log.Fatal(err)
	}

	tp, err := tracing.Init(cfg.Tracing)
	if err != nil {
		log.Fatal(err)
	}
	if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Println(err)
			}
		}()
	}

	server, err := InitializeServer()
	if err != nil {
		log.Fatal(err)
	}

	if err = server.Run(config.ServerStartPort); err != nil {
		log.Fatal(err.Error())
	}

}
