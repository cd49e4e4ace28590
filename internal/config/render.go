package config

import (
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

const header = "# closure compiler client configuration.\n# Values may reference the environment, e.g. endpoint = env.CLOSURE_ENDPOINT\n"

// HCL renders the configuration as a closure.hcl file.
func (c *Config) HCL() []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	body.AppendUnstructuredTokens(hclwrite.Tokens{
		{Type: hclsyntax.TokenComment, Bytes: []byte(header)},
	})
	body.AppendNewline()

	body.SetAttributeValue("endpoint", cty.StringVal(c.Endpoint))
	body.SetAttributeValue("timeout", cty.StringVal(c.Timeout))

	if c.UserAgent != "" {
		body.SetAttributeValue("user_agent", cty.StringVal(c.UserAgent))
	}

	body.SetAttributeValue("debug", cty.BoolVal(c.Debug))

	body.AppendNewline()
	body.SetAttributeValue("log_level", cty.StringVal(c.LogLevel))
	body.SetAttributeValue("log_format", cty.StringVal(c.LogFormat))

	for _, t := range c.Targets {
		body.AppendNewline()
		body.AppendBlock(t.block())
	}

	return f.Bytes()
}

func (t Target) block() *hclwrite.Block {
	block := hclwrite.NewBlock("target", []string{t.Name})
	body := block.Body()

	body.SetAttributeValue("sources", stringList(t.Sources))

	if len(t.Outputs) > 0 {
		body.SetAttributeValue("outputs", stringList(t.Outputs))
	}

	if len(t.DependsOn) > 0 {
		body.SetAttributeValue("depends_on", stringList(t.DependsOn))
	}

	if t.Debug {
		body.SetAttributeValue("debug", cty.True)
	}

	return block
}

func stringList(values []string) cty.Value {
	if len(values) == 0 {
		return cty.ListValEmpty(cty.String)
	}

	vals := make([]cty.Value, len(values))
	for i, v := range values {
		vals[i] = cty.StringVal(v)
	}

	return cty.ListVal(vals)
}
