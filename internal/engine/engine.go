// Package engine implements the Node Evaluator (§4.4): the recursive
// algorithm that turns one compiled node, one record, and a subject into
// zero or more triples, driving fallback, alternatives, joined_map,
// insert_into, UUID derivation, and sub_nodes/sub_data recursion.
package engine

import (
	"strings"

	"github.com/ubleipzig/spcht/access"
	"github.com/ubleipzig/spcht/internal/ir"
	"github.com/ubleipzig/spcht/internal/model"
	"github.com/ubleipzig/spcht/rules"
	"github.com/ubleipzig/spcht/transform"
	"github.com/ubleipzig/spcht/uuidgen"
)

// defaultMaxDepth guards against pathological fallback/sub_nodes chains; it
// is not a spec'd feature, just a recursion backstop (SPEC_FULL.md §4.7).
const defaultMaxDepth = 64

// Options carries the few per-evaluation knobs the engine needs.
type Options struct {
	MaxDepth      int
	CollectSaveAs bool
}

// Context carries per-evaluation accumulators: the SaveAs side-channel and
// non-fatal warnings. A Context is used for exactly one record and then
// discarded (§5: the engine holds no state between calls).
type Context struct {
	opts     Options
	saveAs   map[string][]string
	warnings model.Issues
}

// New builds a fresh Context for one record evaluation.
func New(opts Options) *Context {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	return &Context{opts: opts, saveAs: map[string][]string{}}
}

// SaveAs returns the accumulated side-channel values, keyed by each node's
// `saveas` name (§3 "NEW" clarification).
func (c *Context) SaveAs() map[string][]string { return c.saveAs }

// Warnings returns the non-fatal EvaluationWarning issues collected so far.
func (c *Context) Warnings() model.Issues { return c.warnings }

func (c *Context) warn(issue model.Issue) {
	c.warnings = append(c.warnings, issue)
}

// pipelineValue is one surviving value after the transform pipeline, paired
// with an optional predicate override (set only by joined_map, §4.4 step 4).
type pipelineValue struct {
	Text      string
	Predicate string
}

// EvalHead runs the head node algorithm (§4.4 "Head node is the same
// algorithm but constrained to exactly one surviving object, which becomes
// the record subject"). The zero-value and multi-value misses are
// distinguished: zero values is an ordinary discard (the returned Issue is
// the zero Issue), while more than one surviving value is the fatal
// authoring error §3 calls out ("caught at load time if statically
// detectable, otherwise at runtime") and is reported as a CodeInternal
// Issue rather than folded into the same silent-discard path.
func (c *Context) EvalHead(rec model.Record, head *ir.HeadNode) (subject string, ok bool, fatal model.Issue) {
	values := c.headValues(rec, head)
	if len(values) == 0 && head.Fallback != nil {
		triples, discard, issue := c.EvalBody(rec, head.Fallback, "", 0, true)
		if discard {
			return "", false, model.Issue{}
		}
		if len(triples) == 0 {
			return "", false, model.Issue{}
		}
		if len(triples) > 1 {
			return "", false, headFanoutIssue(head.Fallback, len(triples))
		}
		_ = issue
		return triples[0].Object.Value, true, model.Issue{}
	}
	switch len(values) {
	case 0:
		return "", false, model.Issue{}
	case 1:
		return values[0], true, model.Issue{}
	default:
		return "", false, headFanoutIssue(nil, len(values))
	}
}

func headFanoutIssue(node *ir.Node, n int) model.Issue {
	name := "id"
	if node != nil && node.Name != "" {
		name = node.Name
	}
	return model.Issue{
		Path:    name,
		Code:    model.CodeInternal,
		Message: "head node yielded more than one value; the record subject must be a single scalar",
		Rule:    name,
		Params:  map[string]any{"value_count": n},
	}
}

func (c *Context) headValues(rec model.Record, head *ir.HeadNode) []string {
	raw := access.Read(rec, head.Source, head.Field)
	if len(raw) == 0 {
		for _, alt := range head.Alternatives {
			raw = access.Read(rec, head.Source, alt)
			if len(raw) > 0 {
				break
			}
		}
	}
	if len(raw) == 0 {
		return nil
	}
	vals := transform.Match(raw, head.Match)
	vals = transform.CutReplace(vals, head.Cut, head.Replace)
	vals = transform.Affix(vals, head.Prepend, head.Append)
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.Text()
	}
	return out
}

// EvalBody runs the full node algorithm for one body node against one
// subject. asFallback is true only for the direct call substituting a
// failed node's `fallback` (§4.4 step 3: "ignoring required"); it is not
// propagated further down into sub_nodes/sub_data.
func (c *Context) EvalBody(rec model.Record, node *ir.Node, subject string, depth int, asFallback bool) (triples []model.Triple, discard bool, discardIssue model.Issue) {
	if depth > c.opts.MaxDepth {
		c.warn(model.Issue{Code: model.CodeInternal, Path: node.Name, Message: "maximum recursion depth exceeded"})
		return nil, false, model.Issue{}
	}
	if !rules.Eval(rec, node) {
		return nil, false, model.Issue{}
	}

	raw := access.Read(rec, node.Source, node.Field)
	if len(raw) == 0 {
		for _, alt := range node.Alternatives {
			raw = access.Read(rec, node.Source, alt)
			if len(raw) > 0 {
				break
			}
		}
	}
	if len(raw) == 0 {
		if node.Fallback != nil {
			return c.EvalBody(rec, node.Fallback, subject, depth+1, true)
		}
		if node.Required == model.Mandatory && !asFallback {
			issue := model.Issue{
				Path:    node.Name,
				Code:    model.CodeMandatoryMissing,
				Message: "mandatory node produced no value",
				Rule:    node.Name,
				Params:  map[string]any{"field": node.Field},
			}
			return nil, true, issue
		}
		return nil, false, model.Issue{}
	}

	pvs := c.transformPipeline(rec, node, raw)
	if node.StaticField != nil {
		for i := range pvs {
			pvs[i].Text = *node.StaticField
		}
	}
	if len(pvs) == 0 {
		return nil, false, model.Issue{}
	}

	if node.SaveAs != "" && c.opts.CollectSaveAs && !asFallback {
		for _, pv := range pvs {
			c.saveAs[node.SaveAs] = append(c.saveAs[node.SaveAs], pv.Text)
		}
	}

	predicateUUID, _ := c.uuidSuffix(rec, node, node.AppendUUIDPredicateFields)
	objectUUID, _ := c.uuidSuffix(rec, node, node.AppendUUIDObjectFields)

	for _, pv := range pvs {
		predicate := node.Predicate
		if pv.Predicate != "" {
			predicate = pv.Predicate
		}
		if predicateUUID != "" {
			predicate += predicateUUID
		}
		objectValue := pv.Text
		if objectUUID != "" {
			objectValue += objectUUID
		}
		if node.Type == model.ObjectURI && objectValue == "" {
			continue
		}

		triple := model.Triple{
			Subject:   subject,
			Predicate: predicate,
			Object:    model.Object{Kind: node.Type, Value: objectValue, Tag: node.Tag},
		}
		triples = append(triples, triple)

		for _, sub := range node.SubNodes {
			subTriples, subDiscard, subIssue := c.EvalBody(rec, sub, objectValue, depth+1, false)
			if subDiscard {
				return nil, true, subIssue
			}
			triples = append(triples, subTriples...)
		}
	}

	if node.SubData != "" {
		subTriples, subDiscard, subIssue := c.evalSubData(rec, node, subject, depth)
		if subDiscard {
			return nil, true, subIssue
		}
		triples = append(triples, subTriples...)
	}

	return triples, false, model.Issue{}
}

func (c *Context) evalSubData(rec model.Record, node *ir.Node, subject string, depth int) ([]model.Triple, bool, model.Issue) {
	records := access.ReadRecords(rec, node.Source, node.SubData)
	var triples []model.Triple
	for _, nested := range records {
		nestedRec := model.NewRecord(nested)
		for _, sub := range node.SubDataNodes {
			subTriples, discard, issue := c.EvalBody(nestedRec, sub, subject, depth+1, false)
			if discard {
				return nil, true, issue
			}
			triples = append(triples, subTriples...)
		}
	}
	return triples, false, model.Issue{}
}

// transformPipeline applies the Value Transformer (§4.2 steps 1-5), with
// joined_map replacing the mapping step per §4.4 step 4.
func (c *Context) transformPipeline(rec model.Record, node *ir.Node, raw []model.Scalar) []pipelineValue {
	if node.JoinedField != "" {
		return c.joinedPipeline(rec, node, raw)
	}
	vals := transform.Match(raw, node.Match)
	vals = transform.ApplyMapping(vals, node.Mapping)
	vals = transform.CutReplace(vals, node.Cut, node.Replace)
	vals = transform.Affix(vals, node.Prepend, node.Append)
	if node.InsertInto != "" {
		vals = c.applyInsertInto(rec, node, vals)
	}
	out := make([]pipelineValue, len(vals))
	for i, v := range vals {
		out[i] = pipelineValue{Text: v.Text()}
	}
	return out
}

// joinedPipeline implements §4.4 step 4 / §8 property 6 ("join length
// law"): the paired joined_field value at each index selects this value's
// predicate through joined_map. §4.4 step 4 only replaces the mapping step
// (step 2) of the pipeline -- match (step 1), cut+replace (step 3), and
// prepend/append (step 4) still apply. Match is applied here as a pairwise
// filter over (raw, joined) rather than via transform.Match directly, so a
// dropped value also drops its paired joined_field entry and the index
// alignment the join depends on survives the filter.
func (c *Context) joinedPipeline(rec model.Record, node *ir.Node, raw []model.Scalar) []pipelineValue {
	joined := access.Read(rec, node.Source, node.JoinedField)
	if len(raw) != len(joined) {
		c.warn(model.Issue{
			Path:    node.Name,
			Code:    model.CodeJoinLengthMismatch,
			Message: "joined_field length does not match field length",
			Rule:    node.Name,
			Params:  map[string]any{"field": node.Field, "joined_field": node.JoinedField},
		})
		return nil
	}

	if node.Match != nil {
		filteredRaw := make([]model.Scalar, 0, len(raw))
		filteredJoined := make([]model.Scalar, 0, len(joined))
		for i, v := range raw {
			if node.Match.MatchString(v.Text()) {
				filteredRaw = append(filteredRaw, v)
				filteredJoined = append(filteredJoined, joined[i])
			}
		}
		raw, joined = filteredRaw, filteredJoined
	}

	vals := transform.CutReplace(raw, node.Cut, node.Replace)
	vals = transform.Affix(vals, node.Prepend, node.Append)
	out := make([]pipelineValue, 0, len(vals))
	for i, v := range vals {
		// A joined_map miss falls back to the node's own predicate rather
		// than dropping the pair -- an empty Predicate here is the sentinel
		// EvalBody reads as "use node.Predicate" (grounded on the original
		// implementation's joined-map lookup defaulting to {"$default":
		// sub_dict['predicate']}).
		pv := pipelineValue{Text: v.Text()}
		if mapped, hit := transform.MapSingle(joined[i], node.JoinedMap); hit {
			pv.Predicate = mapped.Text()
		}
		out = append(out, pv)
	}
	return out
}

// applyInsertInto resolves the additional field refs and substitutes the
// cross-product into the template (§4.2 step 5, §9 Open Question: cartesian
// over slots, field-major order -- the main value slot is listed first and
// varies slowest).
func (c *Context) applyInsertInto(rec model.Record, node *ir.Node, mainVals []model.Scalar) []model.Scalar {
	mainText := make([]string, len(mainVals))
	for i, v := range mainVals {
		mainText[i] = v.Text()
	}
	slots := make([][]string, 0, 1+len(node.InsertAddFields))
	slots = append(slots, mainText)
	for _, fr := range node.InsertAddFields {
		raw := access.Read(rec, fr.Source, fr.Field)
		vals := transform.Match(raw, fr.Match)
		vals = transform.CutReplace(vals, fr.Cut, fr.Replace)
		vals = transform.Affix(vals, fr.Prepend, fr.Append)
		texts := make([]string, len(vals))
		for i, v := range vals {
			texts[i] = v.Text()
		}
		slots = append(slots, texts)
	}

	combos := transform.CartesianProduct(slots)
	if len(combos) == 0 && len(mainText) > 0 {
		c.warn(model.Issue{
			Path:    node.Name,
			Code:    model.CodeInsertArityMismatch,
			Message: "insert_into field reference produced no value",
			Rule:    node.Name,
		})
	}
	out := make([]model.Scalar, 0, len(combos))
	for _, combo := range combos {
		rendered, ok := transform.RenderTemplate(node.InsertInto, combo)
		if !ok {
			c.warn(model.Issue{
				Path:    node.Name,
				Code:    model.CodeInsertArityMismatch,
				Message: "insert_into placeholder count does not match the field refs",
				Rule:    node.Name,
			})
			continue
		}
		out = append(out, model.Str(rendered))
	}
	return out
}

// uuidSuffix computes the deterministic UUID for append_uuid_*_fields (§4.4
// steps 6-7, §8 property 8): the concatenation, in list order and without a
// separator, of each field's first value. A missing field aborts UUID
// derivation for this node evaluation (with a warning) rather than deriving
// a UUID from only some of the fields; the node's triples are then emitted
// without a UUID suffix.
func (c *Context) uuidSuffix(rec model.Record, node *ir.Node, fields []string) (string, bool) {
	if len(fields) == 0 {
		return "", true
	}
	var b strings.Builder
	for _, f := range fields {
		vals := access.Read(rec, node.Source, f)
		if len(vals) == 0 {
			c.warn(model.Issue{
				Path:    node.Name,
				Code:    model.CodeInternal,
				Message: "uuid field yielded no value",
				Rule:    node.Name,
				Params:  map[string]any{"field": f},
			})
			return "", false
		}
		b.WriteString(vals[0].Text())
	}
	return uuidgen.Derive(b.String()), true
}
