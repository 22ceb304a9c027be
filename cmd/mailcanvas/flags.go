package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func bindFlag(configViper *viper.Viper, flag *pflag.Flag, key string) {
	if err := configViper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
