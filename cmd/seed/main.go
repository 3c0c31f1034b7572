package main

import (
	"log"

	tool "go-blog-rbac-service/internal/tools/seed"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
