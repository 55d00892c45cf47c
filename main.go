// Package main is the entry point for the pvcompare CLI.
package main

import (
	_ "time/tzdata"

	"github.com/solarlab/pvcompare/cmd"
	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/internal/iocache"
)

func main() {
	defer iocache.CloseStores()
	cmd.SetCacheManager(iocache.Manager)
	if err := cmd.Execute(); err != nil {
		iocache.CloseStores()
		contract.LogFatal("pvcompare failed", err)
	}
}
