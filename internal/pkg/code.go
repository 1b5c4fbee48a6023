package pkg

import (
	cryptoRand "crypto/rand"
	"math/big"
	"strings"
)

func RandDigits(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		x, err := cryptoRand.Int(cryptoRand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + x.Int64()))
	}
	return b.String(), nil
}

// Slugify 去掉空白并转小写："Speed Running" -> "speedrunning"
func Slugify(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

// SlugWithSuffix slug 冲突时追加随机数字后缀
func SlugWithSuffix(slug string) (string, error) {
	suffix, err := RandDigits(4)
	if err != nil {
		return "", err
	}
	return slug + "-" + suffix, nil
}
