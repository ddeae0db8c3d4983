package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-schemaform/pkg/schema"
)

const (
	defaultMaxDocuments = 32
	defaultMaxRefDepth  = 32
)

// ResolveOptions bounds $ref resolution.
type ResolveOptions struct {
	// AllowHTTPRefs permits refs that point at http(s) documents.
	AllowHTTPRefs bool
	// AllowPathTraversal permits relative refs above the root document's
	// directory.
	AllowPathTraversal bool
	// MaxDocuments caps how many documents one resolution may load.
	MaxDocuments int
	// MaxRefDepth caps nested ref chains.
	MaxRefDepth int
}

func (o ResolveOptions) withDefaults() ResolveOptions {
	if o.MaxDocuments <= 0 {
		o.MaxDocuments = defaultMaxDocuments
	}
	if o.MaxRefDepth <= 0 {
		o.MaxRefDepth = defaultMaxRefDepth
	}
	return o
}

// resolver expands refs for one form. It is not reused across calls.
type resolver struct {
	loader  schema.Loader
	options ResolveOptions
	root    *document
	cache   map[string]*document
	stack   []string
}

type document struct {
	key     string
	source  schema.Source
	baseDir string
	data    map[string]any
	anchors map[string]string
}

func newResolver(loader schema.Loader, options ResolveOptions) *resolver {
	return &resolver{
		loader:  loader,
		options: options.withDefaults(),
		cache:   make(map[string]*document),
	}
}

// resolve returns the schema at ref inside the root document with every
// nested ref expanded. A ref that re-enters a schema already being expanded
// is left as a bare {"$ref": ...} object.
func (r *resolver) resolve(ctx context.Context, doc schema.Document, payload map[string]any, ref string) (map[string]any, error) {
	root, err := r.register(doc.Source(), payload)
	if err != nil {
		return nil, err
	}
	r.root = root

	resolved, err := r.node(ctx, root, map[string]any{"$ref": ref})
	if err != nil {
		return nil, err
	}
	out, ok := resolved.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("ref %q is not a schema object", ref)
	}
	return out, nil
}

func (r *resolver) register(src schema.Source, payload map[string]any) (*document, error) {
	key, baseDir := "inline:", ""
	if src != nil {
		var err error
		key, baseDir, err = canonical(src)
		if err != nil {
			return nil, err
		}
	}
	anchors := make(map[string]string)
	if err := indexAnchors(payload, "", anchors); err != nil {
		return nil, err
	}
	doc := &document{key: key, source: src, baseDir: baseDir, data: payload, anchors: anchors}
	r.cache[key] = doc
	return doc, nil
}

func (r *resolver) node(ctx context.Context, doc *document, value any) (any, error) {
	switch typed := value.(type) {
	case map[string]any:
		if ref := stringOf(typed["$ref"]); ref != "" {
			return r.ref(ctx, doc, ref, typed)
		}
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			switch key {
			case "properties", "$defs", "definitions":
				members, ok := child.(map[string]any)
				if !ok {
					out[key] = child
					continue
				}
				resolved := make(map[string]any, len(members))
				for name, member := range members {
					item, err := r.node(ctx, doc, member)
					if err != nil {
						return nil, err
					}
					resolved[name] = item
				}
				out[key] = resolved
			case "items", "allOf", "anyOf", "oneOf":
				item, err := r.node(ctx, doc, child)
				if err != nil {
					return nil, err
				}
				out[key] = item
			default:
				out[key] = child
			}
		}
		return out, nil
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			resolved, err := r.node(ctx, doc, item)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return value, nil
	}
}

func (r *resolver) ref(ctx context.Context, doc *document, ref string, siblings map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, fragment, err := r.target(ctx, doc, ref)
	if err != nil {
		return nil, err
	}
	key := target.key + "#" + fragment
	for _, active := range r.stack {
		if active == key {
			return map[string]any{"$ref": ref}, nil
		}
	}
	if len(r.stack) >= r.options.MaxRefDepth {
		return nil, fmt.Errorf("ref depth exceeds %d at %s", r.options.MaxRefDepth, ref)
	}

	value, err := target.fragment(fragment)
	if err != nil {
		return nil, err
	}
	// Annotations written next to $ref override the referenced schema.
	if object, ok := value.(map[string]any); ok {
		for name, sibling := range siblings {
			if name != "$ref" {
				object[name] = sibling
			}
		}
	}

	r.stack = append(r.stack, key)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()
	return r.node(ctx, target, value)
}

func (r *resolver) target(ctx context.Context, doc *document, ref string) (*document, string, error) {
	location, fragment, _ := strings.Cut(ref, "#")
	if location == "" {
		return doc, fragment, nil
	}
	if r.loader == nil {
		return nil, "", fmt.Errorf("ref %q points outside the document and no loader is configured", ref)
	}
	src, err := r.relative(doc, location)
	if err != nil {
		return nil, "", err
	}
	key, baseDir, err := canonical(src)
	if err != nil {
		return nil, "", err
	}
	if cached, ok := r.cache[key]; ok {
		return cached, fragment, nil
	}
	if len(r.cache) >= r.options.MaxDocuments {
		return nil, "", fmt.Errorf("ref resolution exceeds %d documents", r.options.MaxDocuments)
	}

	loaded, err := r.loader.Load(ctx, src)
	if err != nil {
		return nil, "", fmt.Errorf("load ref %q: %w", ref, err)
	}
	payload, err := decode(loaded.Raw())
	if err != nil {
		return nil, "", fmt.Errorf("ref %q: %w", ref, err)
	}
	target, err := r.register(src, payload)
	if err != nil {
		return nil, "", err
	}
	target.baseDir = baseDir
	return target, fragment, nil
}

func (r *resolver) relative(doc *document, location string) (schema.Source, error) {
	parsed, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid ref %q: %w", location, err)
	}
	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		if !r.options.AllowHTTPRefs {
			return nil, fmt.Errorf("http refs are disabled (%s)", location)
		}
		return schema.SourceFromURL(parsed.String())
	}
	if parsed.Scheme != "" {
		return nil, fmt.Errorf("unsupported ref scheme %q", parsed.Scheme)
	}
	if doc.source == nil {
		return nil, fmt.Errorf("relative ref %q needs a document source", location)
	}

	switch doc.source.Kind() {
	case schema.SourceKindURL:
		if !r.options.AllowHTTPRefs {
			return nil, fmt.Errorf("http refs are disabled (%s)", location)
		}
		base, err := url.Parse(doc.source.Location())
		if err != nil {
			return nil, err
		}
		return schema.SourceFromURL(base.ResolveReference(parsed).String())
	case schema.SourceKindFS:
		candidate := strings.TrimPrefix(path.Join(doc.baseDir, parsed.Path), "/")
		if err := r.contained(candidate, path.Clean(r.root.baseDir), location); err != nil {
			return nil, err
		}
		return schema.SourceFromFS(candidate), nil
	default:
		candidate := parsed.Path
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(doc.baseDir, candidate)
		}
		if err := r.contained(filepath.Clean(candidate), r.root.baseDir, location); err != nil {
			return nil, err
		}
		return schema.SourceFromFile(candidate), nil
	}
}

func (r *resolver) contained(candidate, root, ref string) error {
	if r.options.AllowPathTraversal {
		return nil
	}
	if root == "" {
		root = "."
	}
	rel, err := filepath.Rel(root, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("ref path escapes the root document (%s)", ref)
	}
	return nil
}

func canonical(src schema.Source) (key, baseDir string, err error) {
	location := src.Location()
	switch src.Kind() {
	case schema.SourceKindFile:
		abs, err := filepath.Abs(location)
		if err != nil {
			return "", "", err
		}
		return "file:" + abs, filepath.Dir(abs), nil
	case schema.SourceKindFS:
		cleaned := path.Clean(strings.TrimPrefix(location, "/"))
		return "fs:" + cleaned, path.Dir(cleaned), nil
	case schema.SourceKindURL:
		return "url:" + location, "", nil
	default:
		return "", "", errors.New("unsupported source kind")
	}
}

// fragment returns a copy of the value addressed by a JSON pointer or an
// $anchor name.
func (d *document) fragment(fragment string) (any, error) {
	pointer := fragment
	if pointer != "" && !strings.HasPrefix(pointer, "/") {
		anchored, ok := d.anchors[pointer]
		if !ok {
			return nil, fmt.Errorf("anchor %q not found", fragment)
		}
		pointer = anchored
	}
	current := any(d.data)
	if pointer == "" {
		return cloneValue(current), nil
	}
	for _, token := range strings.Split(pointer, "/")[1:] {
		token, err := url.PathUnescape(token)
		if err != nil {
			return nil, err
		}
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[token]
			if !ok {
				return nil, fmt.Errorf("pointer %q not found", fragment)
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, fmt.Errorf("pointer %q out of range", fragment)
			}
			current = typed[idx]
		default:
			return nil, fmt.Errorf("pointer %q not found", fragment)
		}
	}
	return cloneValue(current), nil
}

func indexAnchors(value any, pointer string, anchors map[string]string) error {
	switch typed := value.(type) {
	case map[string]any:
		if name := stringOf(typed["$anchor"]); name != "" {
			if _, exists := anchors[name]; exists {
				return fmt.Errorf("duplicate anchor %q", name)
			}
			anchors[name] = pointer
		}
		for key, child := range typed {
			if strings.HasPrefix(key, "x-") {
				continue
			}
			escaped := strings.ReplaceAll(strings.ReplaceAll(key, "~", "~0"), "/", "~1")
			if err := indexAnchors(child, pointer+"/"+escaped, anchors); err != nil {
				return err
			}
		}
	case []any:
		for i, child := range typed {
			if err := indexAnchors(child, pointer+"/"+strconv.Itoa(i), anchors); err != nil {
				return err
			}
		}
	}
	return nil
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			out[key] = cloneValue(child)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, child := range typed {
			out[i] = cloneValue(child)
		}
		return out
	default:
		return value
	}
}
