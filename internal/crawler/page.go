package crawler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
)

// Page is the set of browser interactions a stock check needs. Every call
// blocks until done or until ctx expires.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// WaitClickable waits until sel is visible and enabled.
	WaitClickable(ctx context.Context, sel string) error
	ScrollIntoView(ctx context.Context, sel string) error
	// Click performs a mouse click and reports ErrClickIntercepted when
	// another element covers the click point.
	Click(ctx context.Context, sel string) error
	// ScriptClick dispatches el.click() from page script.
	ScriptClick(ctx context.Context, sel string) error
	WaitPresent(ctx context.Context, sel string) error
	Count(ctx context.Context, sel string) (int, error)
	// ScrollToLast scrolls the last element matching sel into view.
	ScrollToLast(ctx context.Context, sel string) error
	Rows(ctx context.Context, sel string) ([]Row, error)
}

// Row is one rendered store row. Err is set when its markup could not be read.
type Row struct {
	HTML string
	Err  error
}

var ErrClickIntercepted = errors.New("element click intercepted")

// ChromePage implements Page on top of a chromedp browser context.
type ChromePage struct{}

func NewChromePage() *ChromePage {
	return &ChromePage{}
}

func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	return chromedp.Run(ctx, chromedp.Navigate(url))
}

func (p *ChromePage) WaitClickable(ctx context.Context, sel string) error {
	return chromedp.Run(ctx,
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.WaitEnabled(sel, chromedp.ByQuery),
	)
}

func (p *ChromePage) ScrollIntoView(ctx context.Context, sel string) error {
	js := fmt.Sprintf(`(() => {
	  const el = document.querySelector(%s);
	  if (!el) return false;
	  el.scrollIntoView({block: 'center'});
	  return true;
	})()`, strconv.Quote(sel))
	var found bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &found)); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no element matches %q", sel)
	}
	return nil
}

// hitTestJS reports what sits under the centre of the first match:
// "ok", "missing", or "covered:<tag.class>" naming the obscuring element.
const hitTestJS = `(() => {
  const el = document.querySelector(%s);
  if (!el) return "missing";
  const r = el.getBoundingClientRect();
  const hit = document.elementFromPoint(r.left + r.width / 2, r.top + r.height / 2);
  if (!hit) return "missing";
  if (hit === el || el.contains(hit)) return "ok";
  const cls = (typeof hit.className === "string" && hit.className) ? "." + hit.className.trim().split(/\s+/).join(".") : "";
  return "covered:" + hit.tagName.toLowerCase() + cls;
})()`

func (p *ChromePage) Click(ctx context.Context, sel string) error {
	var hit string
	if err := chromedp.Run(ctx, chromedp.Evaluate(fmt.Sprintf(hitTestJS, strconv.Quote(sel)), &hit)); err != nil {
		return err
	}
	switch {
	case hit == "missing":
		return fmt.Errorf("no element matches %q", sel)
	case strings.HasPrefix(hit, "covered:"):
		return fmt.Errorf("%w: other element would receive the click: %s", ErrClickIntercepted, strings.TrimPrefix(hit, "covered:"))
	}

	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(sel, &nodes, chromedp.ByQuery)); err != nil {
		return err
	}
	if len(nodes) == 0 {
		return fmt.Errorf("no element matches %q", sel)
	}
	return chromedp.Run(ctx, chromedp.MouseClickNode(nodes[0]))
}

func (p *ChromePage) ScriptClick(ctx context.Context, sel string) error {
	js := fmt.Sprintf(`(() => {
	  const el = document.querySelector(%s);
	  if (!el) return false;
	  el.click();
	  return true;
	})()`, strconv.Quote(sel))
	var clicked bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &clicked)); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("no element matches %q", sel)
	}
	return nil
}

func (p *ChromePage) WaitPresent(ctx context.Context, sel string) error {
	return chromedp.Run(ctx, chromedp.WaitReady(sel, chromedp.ByQuery))
}

func (p *ChromePage) Count(ctx context.Context, sel string) (int, error) {
	var n int
	js := fmt.Sprintf(`document.querySelectorAll(%s).length`, strconv.Quote(sel))
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &n)); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *ChromePage) ScrollToLast(ctx context.Context, sel string) error {
	js := fmt.Sprintf(`(() => {
	  const els = document.querySelectorAll(%s);
	  if (els.length) els[els.length - 1].scrollIntoView();
	  return els.length;
	})()`, strconv.Quote(sel))
	var n int
	return chromedp.Run(ctx, chromedp.Evaluate(js, &n))
}

func (p *ChromePage) Rows(ctx context.Context, sel string) ([]Row, error) {
	// chromedp.Nodes with ByQueryAll blocks until something matches, so an
	// empty panel is answered without it.
	n, err := p.Count(ctx, sel)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll)); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(nodes))
	for _, node := range nodes {
		var row Row
		err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			html, err := dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
			if err != nil {
				return err
			}
			row.HTML = html
			return nil
		}))
		if err != nil {
			row.Err = err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
