package state

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// RoutingSecret keys the authentication tags of routes this node originates
type RoutingSecret [32]byte

func GenerateRoutingSecret() RoutingSecret {
	var s RoutingSecret
	_, err := rand.Read(s[:])
	if err != nil {
		panic(err)
	}
	return s
}

func (k RoutingSecret) IsZero() bool {
	return k == RoutingSecret{}
}

func (k RoutingSecret) MarshalText() ([]byte, error) {
	return []byte(base64.StdEncoding.EncodeToString(k[:])), nil
}

func (k *RoutingSecret) UnmarshalText(text []byte) error {
	data, err := base64.StdEncoding.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(data) != len(k) {
		return fmt.Errorf("routing secret must be %d bytes, got %d", len(k), len(data))
	}
	*k = RoutingSecret(data)
	return nil
}

// LocalRouteAuth computes the tag for a route we originate
func LocalRouteAuth(secret RoutingSecret, prefix string) []byte {
	h, err := blake2b.New256(secret[:])
	if err != nil {
		panic(err)
	}
	h.Write([]byte(prefix))
	return h.Sum(nil)
}

// ForwardedRouteAuth chains the tag of a route learned from a peer before it is re-advertised
func ForwardedRouteAuth(auth []byte) []byte {
	sum := blake2b.Sum256(auth)
	return sum[:]
}
