package main

import "perfdesk/internal/app/server"

func main() {
	server.Run()
}
