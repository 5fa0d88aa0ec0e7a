package usecase

import (
	"strings"

	"github.com/boozescore/backend/internal/domain"
)

// categoryLevels is the depth of a product's category chain
const categoryLevels = 3

// categoryNode is a tree node whose children keep first-seen order
type categoryNode struct {
	id          int
	description string
	children    *orderedNodes
}

// orderedNodes is a map of nodes by id that iterates in insertion order
type orderedNodes struct {
	index map[int]*categoryNode
	order []*categoryNode
}

func newOrderedNodes() *orderedNodes {
	return &orderedNodes{index: make(map[int]*categoryNode)}
}

// getOrAdd returns the node with the given id, inserting it on first encounter
func (o *orderedNodes) getOrAdd(c domain.CategoryNode) *categoryNode {
	if node, ok := o.index[c.ID]; ok {
		return node
	}
	node := &categoryNode{id: c.ID, description: c.Description, children: newOrderedNodes()}
	o.index[c.ID] = node
	o.order = append(o.order, node)
	return node
}

// BuildCategoryTree indexes the category chains of products and flattens
// them depth first: each category is followed by its subcategories, each
// subcategory by its sub-subcategories. Ids seen again are merged.
func BuildCategoryTree(products []domain.Product) []domain.CategoryOption {
	roots := newOrderedNodes()
	for i := range products {
		level := roots
		for depth, c := range products[i].FullCategory {
			if depth == categoryLevels {
				break
			}
			level = level.getOrAdd(c).children
		}
	}

	options := make([]domain.CategoryOption, 0)
	var walk func(nodes *orderedNodes, depth int)
	walk = func(nodes *orderedNodes, depth int) {
		for _, node := range nodes.order {
			options = append(options, domain.CategoryOption{
				ID:          node.id,
				Description: indent(depth) + node.description,
				Depth:       depth,
			})
			walk(node.children, depth+1)
		}
	}
	walk(roots, 0)

	return options
}

func indent(depth int) string {
	if depth == 0 {
		return ""
	}
	return strings.Repeat("-", depth) + " "
}
