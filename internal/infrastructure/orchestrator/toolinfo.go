package orchestrator

import (
	"github.com/cloudwego/eino/schema"
	"github.com/invopop/jsonschema"

	"agri-api/internal/domain/tool"
)

// toolInfos converts registry specs into the descriptors bound to the model.
func toolInfos(specs []tool.Spec) []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, 0, len(specs))
	for _, spec := range specs {
		out = append(out, &schema.ToolInfo{
			Name:        spec.Name,
			Desc:        spec.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params(spec.Parameters)),
		})
	}
	return out
}

func params(s *jsonschema.Schema) map[string]*schema.ParameterInfo {
	out := map[string]*schema.ParameterInfo{}
	if s == nil || s.Properties == nil {
		return out
	}
	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		info := parameter(pair.Value)
		info.Required = required[pair.Key]
		out[pair.Key] = info
	}
	return out
}

func parameter(s *jsonschema.Schema) *schema.ParameterInfo {
	info := &schema.ParameterInfo{Type: dataType(s.Type), Desc: s.Description}
	for _, v := range s.Enum {
		if str, ok := v.(string); ok {
			info.Enum = append(info.Enum, str)
		}
	}
	switch info.Type {
	case schema.Object:
		if sub := params(s); len(sub) > 0 {
			info.SubParams = sub
		}
	case schema.Array:
		if s.Items != nil {
			info.ElemInfo = parameter(s.Items)
		}
	}
	return info
}

func dataType(t string) schema.DataType {
	switch t {
	case "integer":
		return schema.Integer
	case "number":
		return schema.Number
	case "boolean":
		return schema.Boolean
	case "object":
		return schema.Object
	case "array":
		return schema.Array
	default:
		return schema.String
	}
}
