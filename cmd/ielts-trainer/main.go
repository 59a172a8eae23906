package main

import "github.com/SAP-F-2025/ielts-trainer/cmd"

func main() {
	cmd.Execute()
}
