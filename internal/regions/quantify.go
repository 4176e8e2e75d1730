package regions

import (
	"context"
	"strconv"

	"regionck/internal/source"
	"regionck/internal/trace"
	"regionck/internal/types"
)

// Instantiate replaces every bound region that boundTys declare outside a
// fn type with a fresh inference variable and applies the result to
// target. Bound regions nested in fn types inside target are left alone.
//
// The result never holds a Bound region outside a fn type: any such region
// in target that boundTys did not declare makes Apply abort.
func Instantiate(ctx context.Context, fcx FunctionContext, span source.Span, boundTys []types.TypeID, target types.TypeID) (types.TypeID, error) {
	in := fcx.Types()
	p := types.Printer{Types: in, Strings: fcx.Strings()}
	tr := trace.FromContext(ctx)
	debug := tr.Level().ShouldEmit(trace.ScopeOp)

	sp, ctx := trace.Start(ctx, trace.ScopeOp, "instantiate")
	if debug {
		for _, ty := range boundTys {
			trace.Point(ctx, trace.ScopeOp, "bound", p.TypeString(ty))
		}
	}

	subst := Collect(in, boundTys, nil, func(br types.BoundRegion) types.Region {
		v := fcx.FreshRegionVar()
		if debug {
			trace.Point(ctx, trace.ScopeOp, "assign", p.BoundString(br)+" -> "+p.RegionString(v))
		}
		return v
	})

	result, err := Apply(in, fcx, span, subst, target)
	sp.WithExtra("vars", strconv.Itoa(subst.Len()))
	if err != nil {
		sp.End("aborted")
		return types.NoTypeID, err
	}
	if debug {
		sp.WithExtra("result", p.TypeString(result))
	}
	sp.End("")
	return result, nil
}
