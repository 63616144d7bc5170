package subsonic

import (
	"crypto/md5"
	"fmt"
	"math/rand"
	"net/url"

	"github.com/maqibg/BaYin-sub000/domain"
)

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func randSeq(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// authToken derives the per-request Subsonic token: md5 of the password
// concatenated with a fresh salt.
func authToken(password string) (token, salt string) {
	salt = randSeq(8)
	token = fmt.Sprintf("%x", md5.Sum([]byte(password+salt)))
	return token, salt
}

// buildParams assembles the authenticated query parameters every Subsonic
// endpoint expects.
func (c *Client) buildParams(server *domain.ServerConfig, extraParams map[string]string) url.Values {
	token, salt := authToken(server.Password)
	params := url.Values{}
	params.Add("u", server.Username)
	params.Add("t", token)
	params.Add("s", salt)
	params.Add("v", c.APIVersion)
	params.Add("c", c.ClientID)
	params.Add("f", "json")

	for k, v := range extraParams {
		params.Add(k, v)
	}
	return params
}
