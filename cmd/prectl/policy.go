package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/BurntSushi/toml"
	z "github.com/Oudwins/zog"
	"github.com/pkg/errors"

	"github.com/sonr-io/prekit/accesscontrol"
	"github.com/sonr-io/prekit/conditions"
	"github.com/sonr-io/prekit/dkg"
)

// randomDKG in a policy file asks for a freshly generated DKG key.
const randomDKG = "random"

// PolicyFile is the TOML description of an access control policy.
type PolicyFile struct {
	Dkg           string
	Conditions    string
	Authorization string
}

func isDKGKey(value *string, _ z.Ctx) bool {
	if *value == randomDKG {
		return true
	}
	raw, err := hex.DecodeString(*value)
	if err != nil {
		return false
	}
	_, err = dkg.PublicKeyFromBytes(raw)
	return err == nil
}

func isBase64(value *string, _ z.Ctx) bool {
	_, err := base64.StdEncoding.DecodeString(*value)
	return err == nil
}

var policySchema = z.Struct(z.Shape{
	"dkg": z.String().Required().
		TestFunc(isDKGKey, z.Message(`dkg must be "random" or a hex encoded compressed G1 point`)),
	"conditions": z.String().Optional(),
	"authorization": z.String().Required().
		TestFunc(isBase64, z.Message("authorization must be base64")),
})

// LoadPolicy reads a policy file and builds the policy it describes. A file
// without a conditions key yields a policy that carries no conditions.
func LoadPolicy(path string) (accesscontrol.AccessControlPolicy, error) {
	raw := map[string]any{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return accesscontrol.AccessControlPolicy{}, errors.Wrapf(err, "failed to read policy %s", path)
	}

	var pf PolicyFile
	if errs := policySchema.Parse(raw, &pf); errs != nil {
		return accesscontrol.AccessControlPolicy{}, fmt.Errorf("invalid policy %s: %v", path, errs)
	}

	pk, err := pf.dkgKey()
	if err != nil {
		return accesscontrol.AccessControlPolicy{}, err
	}
	var c *conditions.Conditions
	if _, ok := raw["conditions"]; ok {
		cc := conditions.New(pf.Conditions)
		c = &cc
	}
	auth, _ := base64.StdEncoding.DecodeString(pf.Authorization)

	return accesscontrol.NewAccessControlPolicy(accesscontrol.NewAuthenticatedData(pk, c), auth), nil
}

func (pf PolicyFile) dkgKey() (dkg.PublicKey, error) {
	if pf.Dkg == randomDKG {
		return dkg.RandomPublicKey()
	}
	raw, err := hex.DecodeString(pf.Dkg)
	if err != nil {
		return dkg.PublicKey{}, errors.Wrap(err, "dkg key")
	}
	return dkg.PublicKeyFromBytes(raw)
}
