// Command reusemart is the ReuseMart marketplace client.
package main

import "github.com/reusemart/reusemart-mobile/cmd/reusemart/cmd"

func main() {
	cmd.Execute()
}
