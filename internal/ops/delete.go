package ops

import (
	"context"
	"slices"
	"strconv"

	"github.com/hpungsan/delgists/internal/errors"
	"github.com/hpungsan/delgists/internal/gist"
)

// Deleter removes a single gist remotely.
type Deleter interface {
	DeleteGist(ctx context.Context, id string) error
}

// DeleteInput contains parameters for the DeleteSelected operation.
type DeleteInput struct {
	Page      []gist.Gist
	Selection SelectionSet
}

// DeleteOutput contains the result of the DeleteSelected operation.
type DeleteOutput struct {
	// Page is the input page minus every gist that was deleted
	Page []gist.Gist

	// Deleted lists the removed gists in the order they were deleted
	Deleted []gist.Gist
}

// DeleteSelected deletes the selected gists from the page, highest index
// first so lower indices stay valid while entries are removed.
//
// The first failing delete stops the batch. The output still reflects every
// completed removal, and the returned PARTIAL_DELETION error carries the
// indices that were not deleted (the failed one included). Those indices
// still address the same gists in output.Page.
func DeleteSelected(ctx context.Context, deleter Deleter, input DeleteInput) (*DeleteOutput, error) {
	if len(input.Selection) == 0 {
		return nil, errors.NewInvalidRequest("selection is empty")
	}
	for _, idx := range input.Selection {
		if idx < 0 || idx >= len(input.Page) {
			return nil, errors.NewInvalidSelectionIndex(strconv.Itoa(idx+1), len(input.Page))
		}
	}

	order := slices.Compact(slices.Sorted(slices.Values(input.Selection)))
	slices.Reverse(order)

	output := &DeleteOutput{
		Page:    slices.Clone(input.Page),
		Deleted: make([]gist.Gist, 0, len(order)),
	}

	for i, idx := range order {
		g := output.Page[idx]
		if err := deleter.DeleteGist(ctx, g.ID); err != nil {
			remaining := slices.Clone(order[i:])
			slices.Sort(remaining)
			return output, errors.NewPartialDeletion(remaining, len(output.Deleted), err)
		}
		output.Page = slices.Delete(output.Page, idx, idx+1)
		output.Deleted = append(output.Deleted, g)
	}

	return output, nil
}
