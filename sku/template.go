// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package sku

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

// RenderContext carries the values a template's keys may reference.
// CustomData supplies caller-provided keys beyond the closed built-in set.
type RenderContext struct {
	Prefix      string
	Suffix      string
	Sequence    int64
	Padding     int
	BrandCode   string
	CategoryCode string
	ItemName    string
	CustomData  map[string]string
}

// builtinKeys is the closed set of template tokens spec.md §4.2 allows
// without caller-supplied custom data.
var builtinKeys = map[string]bool{
	"prefix": true, "suffix": true, "sequence": true, "padding": true,
	"brand": true, "category": true, "item": true,
}

// ValidateTemplate scans tmpl for {key} tokens and fails if any key is
// neither a builtin nor present in customKeys — spec.md §4.2: "Unknown
// keys in the template fail template validation at update time."
func ValidateTemplate(tmpl string, customKeys map[string]bool) error {
	keys, err := scanKeys(tmpl)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if builtinKeys[k] || customKeys[k] {
			continue
		}
		return fmt.Errorf("unknown template key %q", k)
	}
	return nil
}

// Render expands tmpl against rc. Render does not itself validate the key
// set; callers validate once at get_or_create/update time per spec.md.
func Render(tmpl string, rc RenderContext) (string, error) {
	keys, err := scanKeys(tmpl)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	literal := expandLiterals(tmpl, keys, rc)
	b.WriteString(literal)
	return b.String(), nil
}

// scanKeys walks tmpl with a small recursive-descent scanner that
// collects `{key}` tokens. A dedicated scanner (rather than
// text/template) keeps the accepted surface to exactly the closed key
// set spec.md names — text/template would additionally accept arbitrary
// Go pipeline expressions, which is far more than this template language
// needs (see SPEC_FULL.md §4 expansion).
func scanKeys(tmpl string) ([]string, error) {
	var keys []string
	i := 0
	for i < len(tmpl) {
		if tmpl[i] == '{' {
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated template key starting at byte %d", i)
			}
			key := tmpl[i+1 : i+end]
			if key == "" {
				return nil, fmt.Errorf("empty template key at byte %d", i)
			}
			keys = append(keys, key)
			i += end + 1
			continue
		}
		i++
	}
	return keys, nil
}

func expandLiterals(tmpl string, keys []string, rc RenderContext) string {
	var b strings.Builder
	i := 0
	for i < len(tmpl) {
		if tmpl[i] == '{' {
			end := strings.IndexByte(tmpl[i:], '}')
			key := tmpl[i+1 : i+end]
			b.WriteString(resolveKey(key, rc))
			i += end + 1
			continue
		}
		b.WriteByte(tmpl[i])
		i++
	}
	return b.String()
}

func resolveKey(key string, rc RenderContext) string {
	switch key {
	case "prefix":
		return rc.Prefix
	case "suffix":
		return rc.Suffix
	case "sequence":
		return strconv.FormatInt(rc.Sequence, 10)
	case "padding":
		return fmt.Sprintf("%0*d", rc.Padding, rc.Sequence)
	case "brand":
		return rc.BrandCode
	case "category":
		return rc.CategoryCode
	case "item":
		return slug.Make(rc.ItemName)
	default:
		return rc.CustomData[key]
	}
}
