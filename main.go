package main

import "github.com/rahulmoradiya/haccp-both-sub000/cmd"

func main() {
	cmd.Execute()
}
