package kms

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ruteri/sskr-service/sskr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indent(s string) string {
	return "      " + strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n      ")
}

func planYAML(admins []testAdmin, groups string) string {
	return fmt.Sprintf(`group_threshold: 2
admins:
  - id: alice
    pubkey: |
%s
  - id: bob
    pubkey: |
%s
  - id: carol
    pubkey: |
%s
groups:
%s`, indent(string(admins[0].pubKeyPEM)), indent(string(admins[1].pubKeyPEM)), indent(string(admins[2].pubKeyPEM)), groups)
}

func TestLoadSplitPlan(t *testing.T) {
	admins := newTestAdmins(t, 3)

	plan, err := LoadSplitPlan(strings.NewReader(planYAML(admins, `  - threshold: 2
    members: [alice, bob, carol]
  - threshold: 1
    members: [carol]
`)))
	require.NoError(t, err, "Valid plan should load")

	assert.Equal(t, []sskr.GroupDescriptor{{Threshold: 2, Count: 3}, {Threshold: 1, Count: 1}}, plan.Descriptors())
	assert.Equal(t, "carol", plan.Holder(1, 0))

	keys := plan.AdminKeys()
	assert.Len(t, keys, 3)
	assert.Equal(t, admins[1].pubKeyPEM, keys["bob"])

	config := plan.Config()
	assert.Equal(t, 2, config.GroupThreshold)
	require.Len(t, config.Groups, 2)
	assert.Equal(t, [][]byte{admins[2].pubKeyPEM}, config.Groups[1].AdminPubKeys)
	assert.Equal(t, plan.Descriptors(), config.Descriptors())

	_, assigned, err := NewSSKRKMS(newSeed(t), config)
	require.NoError(t, err, "Plan config should be usable by the KMS")
	assert.Len(t, assigned, 4)
}

func TestLoadSplitPlan_Invalid(t *testing.T) {
	admins := newTestAdmins(t, 3)

	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown admin",
			yaml: planYAML(admins, "  - threshold: 1\n    members: [mallory]\n  - threshold: 1\n    members: [bob]\n"),
		},
		{
			name: "group threshold too high",
			yaml: planYAML(admins, "  - threshold: 1\n    members: [alice]\n"),
		},
		{
			name: "member threshold too high",
			yaml: planYAML(admins, "  - threshold: 3\n    members: [alice, bob]\n  - threshold: 1\n    members: [carol]\n"),
		},
		{
			name: "unknown field",
			yaml: "group_threshold: 1\nthreshold: 2\n",
		},
		{
			name: "bad public key",
			yaml: "group_threshold: 1\nadmins:\n  - id: alice\n    pubkey: nope\ngroups:\n  - threshold: 1\n    members: [alice]\n",
		},
		{
			name: "duplicate admin",
			yaml: fmt.Sprintf("group_threshold: 1\nadmins:\n  - id: alice\n    pubkey: |\n%s\n  - id: alice\n    pubkey: |\n%s\ngroups:\n  - threshold: 1\n    members: [alice]\n",
				indent(string(admins[0].pubKeyPEM)), indent(string(admins[1].pubKeyPEM))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSplitPlan(strings.NewReader(tt.yaml))
			assert.Error(t, err, "Invalid plan should be rejected")
		})
	}
}
