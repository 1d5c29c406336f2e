package blockio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeHCLCleanDocument(t *testing.T) {
	src := []byte(`
resource "aws_instance" "web" {
  ami           = "ami-0abcdef"
  instance_type = "t3.medium"

  root_block_device {
    volume_size = 100
    volume_type = "gp3"
  }
}
`)
	analysis := AnalyzeHCL("main.tf", src)
	assert.True(t, analysis.Passed)
	assert.Empty(t, analysis.Issues)
}

func TestAnalyzeHCLFlagsEmbeddedCredentials(t *testing.T) {
	src := []byte(`
resource "aws_db_instance" "db" {
  engine      = "postgres"
  db_password = "hunter2"
}
`)
	analysis := AnalyzeHCL("db.tf", src)
	require.False(t, analysis.Passed)
	require.Len(t, analysis.Issues, 1)

	issue := analysis.Issues[0]
	assert.Equal(t, "db.tf", issue.File)
	assert.Contains(t, issue.Message, "db_password")
	assert.Equal(t, 4, issue.Line)
}

func TestAnalyzeHCLScansNestedBlocks(t *testing.T) {
	src := []byte(`
resource "aws_instance" "web" {
  instance_type = "t3.medium"

  credentials {
    api_key = "sk-123"
  }
}
`)
	analysis := AnalyzeHCL("main.tf", src)
	require.False(t, analysis.Passed)
	require.Len(t, analysis.Issues, 1)
	assert.Contains(t, analysis.Issues[0].Message, "api_key")
}

func TestAnalyzeHCLSyntaxError(t *testing.T) {
	analysis := AnalyzeHCL("broken.tf", []byte(`resource "aws_instance" {{{`))
	assert.False(t, analysis.Passed)
	assert.NotEmpty(t, analysis.Issues)
	assert.Greater(t, analysis.Issues[0].Line, 0)
}

func TestAnalyzeHCLCaseInsensitiveKeywords(t *testing.T) {
	src := []byte(`
resource "x" "y" {
  DB_Secret_Key = "abc"
}
`)
	analysis := AnalyzeHCL("x.tf", src)
	assert.False(t, analysis.Passed)
}
