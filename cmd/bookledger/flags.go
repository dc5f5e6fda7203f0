package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func bind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
