package model

import "strings"

// Category is either a company category or a resource category. Both
// upstream collections share this shape and form a tree through ParentID.
type Category struct {
    ID          ID             `json:"id,omitempty"`
    Name        string         `json:"name"`
    Description string         `json:"description,omitempty"`
    ParentID    *ID            `json:"parentId,omitempty"`
    CompanyID   *ID            `json:"companyId,omitempty"`
    Metadata    map[string]any `json:"metadata,omitempty"`
}

// Validate checks the fields the category form marks as required.
func (c Category) Validate() error {
    return required("name", strings.TrimSpace(c.Name))
}

// CategoryNode is a category with its children attached.
type CategoryNode struct {
    Category
    Children []*CategoryNode `json:"children"`
}

// BuildTree arranges a flat category list into a forest. Categories whose
// parent is missing from the list are treated as roots, as is the category
// that would close a parent cycle. Every input category appears exactly
// once. Sibling order follows the input order.
func BuildTree(items []Category) []*CategoryNode {
    nodes := make(map[ID]*CategoryNode, len(items))
    order := make([]*CategoryNode, 0, len(items))
    for _, it := range items {
        n := &CategoryNode{Category: it, Children: []*CategoryNode{}}
        order = append(order, n)
        if !it.ID.IsZero() {
            nodes[it.ID] = n
        }
    }
    parentOf := make(map[*CategoryNode]*CategoryNode, len(order))
    roots := []*CategoryNode{}
    for _, n := range order {
        if n.ParentID != nil {
            if p, ok := nodes[*n.ParentID]; ok && !descends(p, n, parentOf) {
                p.Children = append(p.Children, n)
                parentOf[n] = p
                continue
            }
        }
        roots = append(roots, n)
    }
    return roots
}

// descends reports whether n is a or one of a's ancestors.
func descends(n, a *CategoryNode, parentOf map[*CategoryNode]*CategoryNode) bool {
    for cur := n; cur != nil; cur = parentOf[cur] {
        if cur == a {
            return true
        }
    }
    return false
}
