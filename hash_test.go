package cloudshift

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFingerprintDeterministic(t *testing.T) {
	block := Block{
		"id":            "app-servers",
		"service":       "ec2",
		"resource_type": "instance",
		"region":        "us-east-1",
		"quantity":      map[string]any{"amount": 4, "unit": "instances"},
		"configuration": map[string]any{"instance_type": "t3.medium"},
	}

	first := Fingerprint(block, "aws", "gcp", "model-a")
	second := Fingerprint(block, "aws", "gcp", "model-a")
	if first != second {
		t.Errorf("same input produced different keys: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("key length = %d, want 64 hex characters", len(first))
	}
	for _, c := range first {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("key contains non-hex character %q", c)
		}
	}
}

func TestFingerprintNormalization(t *testing.T) {
	base := Fingerprint(Block{
		"service":       "ec2",
		"resource_type": "instance",
		"quantity":      map[string]any{"amount": 4},
	}, "aws", "gcp", "m")

	tests := []struct {
		name  string
		block Block
	}{
		{
			name: "integral float amount",
			block: Block{
				"service":       "ec2",
				"resource_type": "instance",
				"quantity":      map[string]any{"amount": 4.0},
			},
		},
		{
			name: "json number amount",
			block: Block{
				"service":       "ec2",
				"resource_type": "instance",
				"quantity":      map[string]any{"amount": json.Number("4")},
			},
		},
		{
			name: "surrounding whitespace in strings",
			block: Block{
				"service":       "  ec2  ",
				"resource_type": "instance\n",
				"quantity":      map[string]any{"amount": 4},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fingerprint(tt.block, "aws", "gcp", "m"); got != base {
				t.Errorf("key = %s, want %s (formatting-only difference must not change the key)", got, base)
			}
		})
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	block := Block{"service": "ec2", "resource_type": "instance"}
	base := Fingerprint(block, "aws", "gcp", "model-a")

	tests := []struct {
		name   string
		block  Block
		source string
		target string
		model  string
	}{
		{"different content", Block{"service": "s3", "resource_type": "bucket"}, "aws", "gcp", "model-a"},
		{"reversed direction", block, "gcp", "aws", "model-a"},
		{"different target", block, "aws", "azure", "model-a"},
		{"different model", block, "aws", "gcp", "model-b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fingerprint(tt.block, tt.source, tt.target, tt.model); got == base {
				t.Errorf("key did not change for %s", tt.name)
			}
		})
	}
}

func TestCanonicalJSON(t *testing.T) {
	tests := []struct {
		name  string
		block Block
		want  string
	}{
		{
			name:  "keys sorted",
			block: Block{"b": 1, "a": "x"},
			want:  `{"a":"x","b":1}`,
		},
		{
			name:  "nested maps sorted",
			block: Block{"cfg": map[string]any{"z": true, "a": nil}},
			want:  `{"cfg":{"a":null,"z":true}}`,
		},
		{
			name:  "sequence order preserved",
			block: Block{"list": []any{2, 1}},
			want:  `{"list":[2,1]}`,
		},
		{
			name:  "integral float minimal",
			block: Block{"n": 4.0},
			want:  `{"n":4}`,
		},
		{
			name:  "fractional float preserved",
			block: Block{"n": 2.5},
			want:  `{"n":2.5}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(CanonicalJSON(tt.block)); got != tt.want {
				t.Errorf("CanonicalJSON = %s, want %s", got, tt.want)
			}
		})
	}
}

func BenchmarkFingerprint(b *testing.B) {
	block := Block{
		"id":            "app-servers",
		"service":       "ec2",
		"resource_type": "instance",
		"region":        "us-east-1",
		"quantity":      map[string]any{"amount": 4, "unit": "instances"},
		"configuration": map[string]any{
			"instance_type": "t3.medium",
			"disks":         []any{map[string]any{"size": 100, "type": "gp3"}},
		},
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Fingerprint(block, "aws", "gcp", "model-a")
	}
}
