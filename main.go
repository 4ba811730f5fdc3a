package main

import "Gin_postgres_redis_lending/cmd"

func main() {
	cmd.Execute()
}
