package session

import (
	"crypto/subtle"

	"github.com/caratemple/forum/internal/utils"
)

// MaxCSRFTokens bounds the number of outstanding tokens per session; the
// oldest token is dropped when a new one would exceed it. Pages issue a
// handful of tokens each, and the whole session must stay under the 4 KB
// limit of the cookie and redis stores.
const MaxCSRFTokens = 8

type tokenEntry struct {
	Token    string
	IssuedAt int64
}

func (c *Context) tokens() map[string]tokenEntry {
	if tokens, ok := c.values.Get(keyCSRF).(map[string]tokenEntry); ok {
		return tokens
	}
	return map[string]tokenEntry{}
}

// IssueCSRF creates a token for formKey, replacing any previous one.
func (c *Context) IssueCSRF(formKey string) (string, error) {
	token, err := utils.GenerateToken()
	if err != nil {
		return "", err
	}

	tokens := c.tokens()
	tokens[formKey] = tokenEntry{Token: token, IssuedAt: c.now().UnixNano()}
	for len(tokens) > MaxCSRFTokens {
		delete(tokens, oldestKey(tokens))
	}
	c.values.Set(keyCSRF, tokens)

	return token, nil
}

// ValidateCSRF reports whether token matches the one stored for formKey. A
// matching token is consumed.
func (c *Context) ValidateCSRF(formKey, token string) bool {
	tokens := c.tokens()
	entry, ok := tokens[formKey]
	if !ok || token == "" {
		return false
	}

	if c.tokenTTL > 0 && c.now().UnixNano()-entry.IssuedAt > int64(c.tokenTTL) {
		delete(tokens, formKey)
		c.values.Set(keyCSRF, tokens)
		return false
	}

	if subtle.ConstantTimeCompare([]byte(entry.Token), []byte(token)) != 1 {
		return false
	}

	delete(tokens, formKey)
	c.values.Set(keyCSRF, tokens)
	return true
}

func oldestKey(tokens map[string]tokenEntry) string {
	var (
		oldest string
		at     int64
		first  = true
	)
	for key, entry := range tokens {
		if first || entry.IssuedAt < at {
			oldest, at, first = key, entry.IssuedAt, false
		}
	}
	return oldest
}
