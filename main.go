// Feedwatch detects missing or abnormal data feed deliveries by comparing
// today's arrivals against each feed's own history.
package main

import (
	"github.com/feedwatch/feedwatch/cmd"
	"github.com/feedwatch/feedwatch/internal/contract"
	"github.com/feedwatch/feedwatch/internal/statestore"
)

func main() {
	defer statestore.Close()
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("running feedwatch", err)
	}
}
