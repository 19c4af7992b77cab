// Command thotctl is the operator CLI: schema migrations, demo data and
// projections from the terminal.
package main

func main() {
	Execute()
}
