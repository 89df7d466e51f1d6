// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

// Package slack wraps the thin Slack surfaces Slidecast depends on:
// request signature verification, authenticated file downloads, and
// threaded chat.postMessage confirmations.
package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signature header names sent by Slack with every events request.
const (
	HeaderTimestamp = "X-Slack-Request-Timestamp"
	HeaderSignature = "X-Slack-Signature"
)

// VerifySignature reports whether signature matches the HMAC-SHA256 of
// "v0:<timestamp>:<body>" under the signing secret. The comparison is
// constant-time; a tampered body or stale signature fails here before any
// event parsing happens.
func VerifySignature(secret []byte, timestamp, signature string, body []byte) bool {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte("v0:" + timestamp + ":"))
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
