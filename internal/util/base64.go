package util

import "encoding/base64"

// Decode replaces a base64-obfuscated config value with its plain form in
// place. Values that fail to decode are left untouched.
func Decode(s *string) {
	d, err := base64.StdEncoding.DecodeString(*s)
	if err != nil {
		return
	}
	*s = string(d)
}
