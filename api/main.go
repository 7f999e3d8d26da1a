package main

import (
	"github.com/joho/godotenv"
	"github.com/roomkeeper/roomkeeper/api/cmd/roomkeeper"
)

func main() {
	_ = godotenv.Load()
	roomkeeper.Execute()
}
