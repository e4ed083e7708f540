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

// Package httpsig implements draft-cavage-http-signatures, the HTTP
// signature convention ActivityPub peers use to authenticate requests:
// an RSA-SHA256 signature over the request-target, Host, Date and (for
// POST) Digest headers, carried in a Signature header.
package httpsig

import "crypto/rsa"

// Key is a signing or verification key, addressed by the actor
// publicKey/privateKey IRI it was minted under.
type Key struct {
	ID         string
	PrivateKey *rsa.PrivateKey
	PublicKey  *rsa.PublicKey
}
