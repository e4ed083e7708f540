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

func TestSignHappyFlow(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)

	body := []byte(`{"id":"https://corvid.example/activities/1"}`)
	req, err := http.NewRequest(http.MethodPost, "https://corvid.example/users/alice/inbox", bytes.NewReader(body))
	assert.NoError(t, err)

	now := time.Now()
	assert.NoError(t, Sign(req, Key{ID: "https://corvid.example/users/alice#key", PrivateKey: priv}, now))

	sig, err := Extract(req, body, "corvid.example", time.Minute)
	assert.NoError(t, err)

	assert.Equal(t, "https://corvid.example/users/alice#key", sig.KeyID)
	assert.NoError(t, sig.Verify(&priv.PublicKey))
}

func TestSignGet(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "https://corvid.example/users/alice", nil)
	assert.NoError(t, err)

	now := time.Now()
	assert.NoError(t, Sign(req, Key{ID: "https://corvid.example/users/alice#key", PrivateKey: priv}, now))

	sig, err := Extract(req, nil, "corvid.example", time.Minute)
	assert.NoError(t, err)
	assert.NoError(t, sig.Verify(&priv.PublicKey))
}

func TestSignNoKeyID(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "https://corvid.example/users/alice", nil)
	assert.NoError(t, err)

	assert.Error(t, Sign(req, Key{PrivateKey: priv}, time.Now()))
}

func TestSignNoPrivateKey(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://corvid.example/users/alice", nil)
	assert.NoError(t, err)

	assert.Error(t, Sign(req, Key{ID: "https://corvid.example/users/alice#key"}, time.Now()))
}
