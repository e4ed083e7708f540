/*
Copyright 2026 The Corvid Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package httpsig

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func signedRequest(t *testing.T, priv *rsa.PrivateKey, body []byte) *http.Request {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, "https://corvid.example/users/alice/inbox", bytes.NewReader(body))
	assert.NoError(t, err)
	assert.NoError(t, Sign(req, Key{ID: "https://corvid.example/users/alice#key", PrivateKey: priv}, time.Now()))
	return req
}

func TestVerifyWrongHost(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)

	body := []byte(`{}`)
	req := signedRequest(t, priv, body)

	_, err = Extract(req, body, "other.example", time.Minute)
	assert.Error(t, err)
}

func TestVerifyStaleDate(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)

	body := []byte(`{}`)
	req, err := http.NewRequest(http.MethodPost, "https://corvid.example/users/alice/inbox", bytes.NewReader(body))
	assert.NoError(t, err)
	assert.NoError(t, Sign(req, Key{ID: "https://corvid.example/users/alice#key", PrivateKey: priv}, time.Now().Add(-time.Hour)))

	_, err = Extract(req, body, "corvid.example", time.Minute)
	assert.Error(t, err)
}

func TestVerifyDigestMismatch(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)

	body := []byte(`{"a":1}`)
	req := signedRequest(t, priv, body)

	_, err = Extract(req, []byte(`{"a":2}`), "corvid.example", time.Minute)
	assert.Error(t, err)
}

func TestVerifyWrongKey(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)

	body := []byte(`{}`)
	req := signedRequest(t, priv, body)

	sig, err := Extract(req, body, "corvid.example", time.Minute)
	assert.NoError(t, err)

	assert.Error(t, sig.Verify(&other.PublicKey))
}
