// Package loader implements the Descriptor Loader & Validator (§4.5):
// parsing an SDF document, resolving $ref/joined_map_ref mapping files,
// validating every structural invariant, precompiling regexes, and
// producing an immutable internal/ir.Descriptor.
package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ubleipzig/spcht/internal/ir"
	"github.com/ubleipzig/spcht/internal/model"
	"github.com/ubleipzig/spcht/jsonschema"
	"github.com/ubleipzig/spcht/rules"
	"github.com/ubleipzig/spcht/source"
)

const defaultMarcKey = "fullrecord"

// nodeKnownKeys is the full recognized key set for a body/fallback node
// (§4.5 last bullet: "keys not in the known set and not prefixed comment
// are rejected").
var nodeKnownKeys = map[string]bool{
	"name": true, "source": true, "field": true, "predicate": true,
	"required": true, "type": true, "tag": true,
	"alternatives": true, "fallback": true,
	"match": true, "cut": true, "replace": true, "prepend": true, "append": true,
	"insert_into": true, "insert_add_fields": true,
	"static_field": true,
	"mapping": true, "mapping_settings": true,
	"joined_field": true, "joined_map": true, "joined_map_ref": true,
	"if_field": true, "if_condition": true, "if_value": true,
	"if_match": true, "if_cut": true, "if_replace": true, "if_prepend": true, "if_append": true,
	"append_uuid_predicate_fields": true, "append_uuid_object_fields": true,
	"sub_nodes": true, "sub_data": true, "sub_data_nodes": true, "saveas": true,
}

var fieldRefKnownKeys = map[string]bool{
	"field": true, "source": true, "match": true, "cut": true, "replace": true,
	"prepend": true, "append": true,
}

// LoadFile reads a descriptor document from disk, detecting JSON/YAML by
// extension, and compiles it relative to its own directory (§4.5 "$ref
// paths resolve relative to the descriptor file's directory").
func LoadFile(path string) (*ir.Descriptor, model.Issues) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("spcht: cannot read descriptor file", "path", path, "err", err)
		return nil, model.Issues{{Code: model.CodeUnresolvedRef, Message: fmt.Sprintf("cannot read descriptor file: %v", err)}}
	}
	doc, derr := source.Decode(data, source.DetectFormat(path))
	if derr != nil {
		slog.Error("spcht: cannot decode descriptor file", "path", path, "err", derr)
		return nil, model.Issues{{Code: model.CodeMissingHead, Message: derr.Error()}}
	}
	d, issues := Load(doc, filepath.Dir(path))
	if issues != nil {
		slog.Warn("spcht: descriptor failed validation", "path", path, "issue_count", len(issues))
		return d, issues
	}
	slog.Info("spcht: descriptor loaded", "path", path, "node_count", len(d.Nodes))
	return d, nil
}

// Load compiles an already-decoded descriptor document. baseDir anchors
// $ref/joined_map_ref resolution.
func Load(doc any, baseDir string) (*ir.Descriptor, model.Issues) {
	var issues model.Issues

	if msgs := jsonschema.DescriptorShape.Validate("descriptor", doc); len(msgs) > 0 {
		for _, m := range msgs {
			issues = append(issues, model.Issue{Code: model.CodeMissingHead, Message: m})
		}
		return nil, issues
	}

	root, _ := doc.(map[string]any)

	head := compileHead(root, baseDir, &issues)

	marcKey := defaultMarcKey
	if v, ok := root["marc_key"].(string); ok && v != "" {
		marcKey = v
	}

	rawNodes, _ := root["nodes"].([]any)
	nodes := make([]*ir.Node, 0, len(rawNodes))
	for i, rn := range rawNodes {
		nm, ok := rn.(map[string]any)
		if !ok {
			issues = append(issues, model.Issue{Code: model.CodeMissingNodeField, Path: fmt.Sprintf("nodes[%d]", i), Message: "node is not an object"})
			continue
		}
		node := compileNode(nm, fmt.Sprintf("nodes[%d]", i), baseDir, "", false, &issues)
		if node != nil {
			nodes = append(nodes, node)
		}
	}

	if len(issues) > 0 {
		return nil, issues
	}
	return &ir.Descriptor{Head: head, Nodes: nodes, MarcKey: marcKey}, nil
}

func compileHead(root map[string]any, baseDir string, issues *model.Issues) ir.HeadNode {
	var head ir.HeadNode
	srcStr, _ := root["id_source"].(string)
	src, ok := model.ParseSourceKind(srcStr)
	if !ok {
		*issues = append(*issues, model.Issue{Code: model.CodeMissingHead, Path: "id_source", Message: "missing or unrecognized id_source"})
	}
	head.Source = src

	field, ok := root["id_field"].(string)
	if !ok || field == "" {
		*issues = append(*issues, model.Issue{Code: model.CodeMissingHead, Path: "id_field", Message: "missing id_field"})
	}
	head.Field = field

	head.Alternatives = stringList(root["id_alternatives"])
	head.Match = compileOptionalRegex(root, "id_match", "id_match", issues)
	head.Cut = compileOptionalRegex(root, "id_cut", "id_cut", issues)
	head.Replace, _ = root["id_replace"].(string)
	head.Prepend, _ = root["id_prepend"].(string)
	head.Append, _ = root["id_append"].(string)

	if fb, ok := root["id_fallback"].(map[string]any); ok {
		head.Fallback = compileNode(fb, "id_fallback", baseDir, "", true, issues)
	}
	return head
}

// compileNode compiles one node. parentPredicate/isFallback implement the
// "inheriting predicate unless redefined, ignoring required" rule for
// fallback nodes (§4.4 step 3).
func compileNode(raw map[string]any, path, baseDir, parentPredicate string, isFallback bool, issues *model.Issues) *ir.Node {
	for key := range raw {
		if !nodeKnownKeys[key] && !strings.HasPrefix(key, "comment") {
			*issues = append(*issues, model.Issue{Code: model.CodeUnknownKey, Path: path, Message: "unknown key " + key})
		}
	}

	node := &ir.Node{}
	node.Name, _ = raw["name"].(string)

	srcStr, _ := raw["source"].(string)
	src, ok := model.ParseSourceKind(srcStr)
	if !ok {
		*issues = append(*issues, model.Issue{Code: model.CodeBadSource, Path: path, Message: "missing or unrecognized source"})
	}
	node.Source = src

	field, ok := raw["field"].(string)
	if !ok || field == "" {
		*issues = append(*issues, model.Issue{Code: model.CodeMissingNodeField, Path: path, Message: "missing field"})
	}
	node.Field = field

	predicate, hasPredicate := raw["predicate"].(string)
	if !hasPredicate || predicate == "" {
		if isFallback && parentPredicate != "" {
			predicate = parentPredicate
		} else {
			*issues = append(*issues, model.Issue{Code: model.CodeMissingNodeField, Path: path, Message: "missing predicate"})
		}
	}
	node.Predicate = predicate

	requiredStr, hasRequired := raw["required"].(string)
	if !hasRequired && !isFallback {
		*issues = append(*issues, model.Issue{Code: model.CodeMissingNodeField, Path: path, Message: "missing required"})
	}
	required, ok := model.ParseRequired(requiredStr)
	if !ok {
		*issues = append(*issues, model.Issue{Code: model.CodeBadRequired, Path: path, Message: "invalid required value"})
	}
	node.Required = required

	typeStr, _ := raw["type"].(string)
	objType, ok := model.ParseObjectKind(typeStr)
	if !ok {
		*issues = append(*issues, model.Issue{Code: model.CodeBadType, Path: path, Message: "invalid type value"})
	}
	node.Type = objType
	node.Tag, _ = raw["tag"].(string)

	node.Alternatives = stringList(raw["alternatives"])

	node.Match = compileOptionalRegex(raw, "match", path+".match", issues)
	node.Cut = compileOptionalRegex(raw, "cut", path+".cut", issues)
	node.Replace, _ = raw["replace"].(string)
	node.Prepend, _ = raw["prepend"].(string)
	node.Append, _ = raw["append"].(string)

	if fb, ok := raw["fallback"].(map[string]any); ok {
		node.Fallback = compileNode(fb, path+".fallback", baseDir, node.Predicate, true, issues)
	}

	node.InsertInto, _ = raw["insert_into"].(string)
	if refsRaw, ok := raw["insert_add_fields"].([]any); ok {
		for i, rr := range refsRaw {
			fm, ok := rr.(map[string]any)
			if !ok {
				*issues = append(*issues, model.Issue{Code: model.CodeMissingNodeField, Path: fmt.Sprintf("%s.insert_add_fields[%d]", path, i), Message: "field ref is not an object"})
				continue
			}
			node.InsertAddFields = append(node.InsertAddFields, compileFieldRef(fm, fmt.Sprintf("%s.insert_add_fields[%d]", path, i), node.Source, issues))
		}
	}
	if node.InsertInto != "" {
		want := 1 + len(node.InsertAddFields)
		if got := transformCountPlaceholders(node.InsertInto); got != want {
			*issues = append(*issues, model.Issue{
				Code: model.CodeBadInsertArity, Path: path,
				Message: fmt.Sprintf("insert_into has %d placeholders, want %d", got, want),
			})
		}
	}

	if sf, ok := raw["static_field"]; ok {
		s := fmt.Sprint(sf)
		node.StaticField = &s
	}

	node.Mapping = compileMapping(raw["mapping"], raw["mapping_settings"], baseDir, path, issues)

	node.JoinedField, _ = raw["joined_field"].(string)
	if node.JoinedField != "" {
		node.JoinedMap = compileMapping(raw["joined_map"], map[string]any{"$ref": raw["joined_map_ref"]}, baseDir, path+".joined_map", issues)
	}

	compileConditional(raw, node, path, issues)

	node.AppendUUIDPredicateFields = stringList(raw["append_uuid_predicate_fields"])
	node.AppendUUIDObjectFields = stringList(raw["append_uuid_object_fields"])

	node.SaveAs, _ = raw["saveas"].(string)

	if subsRaw, ok := raw["sub_nodes"].([]any); ok {
		for i, sr := range subsRaw {
			sm, ok := sr.(map[string]any)
			if !ok {
				*issues = append(*issues, model.Issue{Code: model.CodeMissingNodeField, Path: fmt.Sprintf("%s.sub_nodes[%d]", path, i), Message: "sub node is not an object"})
				continue
			}
			if sub := compileNode(sm, fmt.Sprintf("%s.sub_nodes[%d]", path, i), baseDir, "", false, issues); sub != nil {
				node.SubNodes = append(node.SubNodes, sub)
			}
		}
	}

	node.SubData, _ = raw["sub_data"].(string)
	if subsRaw, ok := raw["sub_data_nodes"].([]any); ok {
		for i, sr := range subsRaw {
			sm, ok := sr.(map[string]any)
			if !ok {
				*issues = append(*issues, model.Issue{Code: model.CodeMissingNodeField, Path: fmt.Sprintf("%s.sub_data_nodes[%d]", path, i), Message: "sub_data node is not an object"})
				continue
			}
			if sub := compileNode(sm, fmt.Sprintf("%s.sub_data_nodes[%d]", path, i), baseDir, "", false, issues); sub != nil {
				node.SubDataNodes = append(node.SubDataNodes, sub)
			}
		}
	}

	return node
}

func compileFieldRef(raw map[string]any, path string, parentSource model.SourceKind, issues *model.Issues) ir.FieldRef {
	for key := range raw {
		if !fieldRefKnownKeys[key] && !strings.HasPrefix(key, "comment") {
			*issues = append(*issues, model.Issue{Code: model.CodeUnknownKey, Path: path, Message: "unknown key " + key})
		}
	}
	fr := ir.FieldRef{Source: parentSource}
	if srcStr, ok := raw["source"].(string); ok {
		if src, ok := model.ParseSourceKind(srcStr); ok {
			fr.Source = src
		}
	}
	fr.Field, _ = raw["field"].(string)
	if fr.Field == "" {
		*issues = append(*issues, model.Issue{Code: model.CodeMissingNodeField, Path: path, Message: "field ref missing field"})
	}
	fr.Match = compileOptionalRegex(raw, "match", path+".match", issues)
	fr.Cut = compileOptionalRegex(raw, "cut", path+".cut", issues)
	fr.Replace, _ = raw["replace"].(string)
	fr.Prepend, _ = raw["prepend"].(string)
	fr.Append, _ = raw["append"].(string)
	return fr
}

// compileConditional compiles if_field/if_condition/if_value plus the
// if_* transform siblings (§4.3, §4.5 "if_condition is a recognized
// lexeme; list if_value only with ==/!=").
func compileConditional(raw map[string]any, node *ir.Node, path string, issues *model.Issues) {
	ifField, hasIfField := raw["if_field"].(string)
	if !hasIfField {
		return
	}
	node.IfField = ifField
	cond, _ := raw["if_condition"].(string)
	if !rules.Recognized(cond) {
		*issues = append(*issues, model.Issue{Code: model.CodeBadCondition, Path: path, Message: "unrecognized if_condition " + cond})
	}
	node.IfCondition = cond

	switch v := raw["if_value"].(type) {
	case []any:
		node.IfValueList = true
		for _, item := range v {
			node.IfValues = append(node.IfValues, fmt.Sprint(item))
		}
		if !rules.ListCompatible(cond) {
			*issues = append(*issues, model.Issue{Code: model.CodeBadCondition, Path: path, Message: "if_value list only allowed with ==/!="})
		}
	case nil:
		// exi doesn't require if_value
	default:
		node.IfValues = []string{fmt.Sprint(v)}
	}

	node.IfMatch = compileOptionalRegex(raw, "if_match", path+".if_match", issues)
	node.IfCut = compileOptionalRegex(raw, "if_cut", path+".if_cut", issues)
	node.IfReplace, _ = raw["if_replace"].(string)
	node.IfPrepend, _ = raw["if_prepend"].(string)
	node.IfAppend, _ = raw["if_append"].(string)
}

// compileMapping builds the compiled Mapping for either `mapping` +
// `mapping_settings`, or the `joined_map` + a synthesized
// {"$ref": joined_map_ref} settings object passed in by the caller for the
// join case (§4.5 "$ref/joined_map_ref paths resolve...").
func compileMapping(mappingRaw, settingsRaw any, baseDir, path string, issues *model.Issues) *ir.Mapping {
	mm, hasMapping := mappingRaw.(map[string]any)
	sm, hasSettings := settingsRaw.(map[string]any)
	refVal, hasRef := sm["$ref"]
	if !hasMapping && !(hasSettings && hasRef && refVal != nil) {
		return nil
	}

	m := &ir.Mapping{CaseSens: true}
	entries := map[string]string{}
	if hasMapping {
		for k, v := range mm {
			entries[k] = fmt.Sprint(v)
		}
	}

	if hasSettings {
		for key, val := range sm {
			switch key {
			case "$default":
				if val != nil {
					s := fmt.Sprint(val)
					m.Default = &s
				}
			case "$inherit":
				b, _ := val.(bool)
				m.Inherit = b
			case "$casesens":
				b, _ := val.(bool)
				m.CaseSens = b
			case "$regex":
				b, _ := val.(bool)
				m.Regex = b
			case "$ref":
				refPath, ok := val.(string)
				if !ok || refPath == "" {
					continue
				}
				resolved := filepath.Join(baseDir, refPath)
				data, err := os.ReadFile(resolved)
				if err != nil {
					*issues = append(*issues, model.Issue{Code: model.CodeUnresolvedRef, Path: path, Message: "cannot read $ref: " + err.Error()})
					continue
				}
				refEntries, derr := source.DecodeFlatMapping(data, source.DetectFormat(resolved))
				if derr != nil {
					*issues = append(*issues, model.Issue{Code: model.CodeUnresolvedRef, Path: path, Message: derr.Error()})
					continue
				}
				for k, v := range refEntries {
					if _, exists := entries[k]; !exists {
						entries[k] = v
					}
				}
			default:
				if !strings.HasPrefix(key, "comment") {
					*issues = append(*issues, model.Issue{Code: model.CodeBadMappingSettings, Path: path, Message: "unknown mapping_settings key " + key})
				}
			}
		}
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if m.Regex {
		for _, k := range keys {
			pattern := k
			if !m.CaseSens {
				pattern = "(?i)" + k
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				*issues = append(*issues, model.Issue{Code: model.CodeBadRegex, Path: path, Message: "bad mapping regex: " + err.Error()})
				continue
			}
			m.Regexes = append(m.Regexes, ir.RegexMapEntry{Pattern: re, Value: entries[k]})
		}
	} else {
		m.Exact = make(map[string]string, len(entries))
		m.ExactCI = make(map[string]string, len(entries))
		for k, v := range entries {
			m.Exact[k] = v
			m.ExactCI[strings.ToLower(k)] = v
		}
	}
	return m
}

func compileOptionalRegex(raw map[string]any, key, path string, issues *model.Issues) *regexp.Regexp {
	s, ok := raw[key].(string)
	if !ok || s == "" {
		return nil
	}
	re, err := regexp.Compile(s)
	if err != nil {
		*issues = append(*issues, model.Issue{Code: model.CodeBadRegex, Path: path, Message: "bad regex: " + err.Error()})
		return nil
	}
	return re
}

func stringList(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

// transformCountPlaceholders mirrors transform.CountPlaceholders without an
// import cycle concern -- the loader validates arity structurally at
// compile time, independent of the evaluator's own defensive check.
func transformCountPlaceholders(template string) int {
	return strings.Count(template, "{}")
}
