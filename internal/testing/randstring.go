package testing

import (
	"math/rand"
	"strings"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandString generates random string with 10 symbols length from lower- and uppercase alphabet
func RandString() string {
	var out strings.Builder
	out.Grow(10)
	for i := 0; i < 10; i++ {
		out.WriteByte(letters[rand.Intn(len(letters))])
	}
	return out.String()
}

// RandEmail generates a unique looking lowercase address, e.g. for registering owners in tests
func RandEmail() string {
	return strings.ToLower(RandString()) + "@example.com"
}
