//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/whiteboard/backend-go/internal/engine"
	"github.com/inamate/whiteboard/backend-go/internal/scene"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(engine.DefaultStepSize)

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("loadBoard", js.FuncOf(loadBoard))
	api.Set("loadSampleBoard", js.FuncOf(loadSampleBoard))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("setCropping", js.FuncOf(setCropping))
	api.Set("setDimension", js.FuncOf(setDimension))
	api.Set("beginResize", js.FuncOf(beginResize))
	api.Set("updateResize", js.FuncOf(updateResize))
	api.Set("endResize", js.FuncOf(endResize))
	api.Set("cancelResize", js.FuncOf(cancelResize))
	api.Set("onChange", js.FuncOf(onChange))

	// --- Queries (frontend ← engine) ---
	api.Set("getBoard", js.FuncOf(getBoard))
	api.Set("getDimensions", js.FuncOf(getDimensions))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getHighlighted", js.FuncOf(getHighlighted))
	api.Set("isResizing", js.FuncOf(isResizing))

	js.Global().Set("whiteboardEngine", api)
	js.Global().Set("whiteboardWasmReady", js.ValueOf(true))

	select {}
}

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// resizeResult returns the result as a JSON string so "Mixed" dimensions
// survive the trip.
func resizeResult(res engine.Result, err error) interface{} {
	if err != nil {
		return errorResult(err)
	}
	out := map[string]interface{}{
		"result":      res,
		"dimensions":  eng.Dimensions(),
		"highlighted": eng.Highlighted(),
	}
	if failed := res.Err(); failed != nil {
		out["error"] = failed.Error()
	}
	data, err := json.Marshal(out)
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(string(data))
}

func stringArgs(v js.Value) []string {
	if v.Type() != js.TypeObject {
		return nil
	}
	ids := make([]string, v.Length())
	for i := range ids {
		ids[i] = v.Index(i).String()
	}
	return ids
}

// optionsArg reads {preserveAspectRatio, stepSizeQuantization} from a JS object.
func optionsArg(args []js.Value, i int) engine.Options {
	var opts engine.Options
	if len(args) <= i || args[i].Type() != js.TypeObject {
		return opts
	}
	if v := args[i].Get("preserveAspectRatio"); v.Type() == js.TypeBoolean {
		opts.PreserveAspectRatio = v.Bool()
	}
	if v := args[i].Get("stepSizeQuantization"); v.Type() == js.TypeBoolean {
		opts.StepSizeQuantization = v.Bool()
	}
	return opts
}

// --- Command Handlers ---

func loadBoard(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing board JSON"})
	}
	if err := eng.LoadBoard(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadSampleBoard(this js.Value, args []js.Value) interface{} {
	boardID := "board_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		boardID = args[0].String()
	}
	eng.LoadSampleBoard(boardID)
	return okResult()
}

func setSelection(this js.Value, args []js.Value) interface{} {
	var ids []string
	if len(args) > 0 {
		ids = stringArgs(args[0])
	}
	if err := eng.SetSelection(ids); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setCropping(this js.Value, args []js.Value) interface{} {
	id := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		id = args[0].String()
	}
	if err := eng.SetCropping(id); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setDimension(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "expected property and value"})
	}
	return resizeResult(eng.SetDimension(args[0].String(), args[1].Float(), optionsArg(args, 2)))
}

func beginResize(this js.Value, args []js.Value) interface{} {
	if err := eng.BeginResize(); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func updateResize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "expected property and delta"})
	}
	return resizeResult(eng.UpdateResize(args[0].String(), args[1].Float(), optionsArg(args, 2)))
}

func endResize(this js.Value, args []js.Value) interface{} {
	return resizeResult(eng.EndResize())
}

func cancelResize(this js.Value, args []js.Value) interface{} {
	if err := eng.CancelResize(); err != nil {
		return errorResult(err)
	}
	return okResult()
}

// onChange registers a callback invoked with (version, reason) after every
// committed change. It returns an unsubscribe function.
func onChange(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return js.ValueOf(map[string]interface{}{"error": "expected callback"})
	}
	callback := args[0]
	unsubscribe, err := eng.Subscribe(func(u scene.Update) {
		// subscribers run under the engine lock; let the callback call back in
		go callback.Invoke(u.Version, u.Reason)
	})
	if err != nil {
		return errorResult(err)
	}
	var release js.Func
	release = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		unsubscribe()
		release.Release()
		return nil
	})
	return release
}

// --- Query Handlers ---

func getBoard(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetBoard())
}

func getDimensions(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDimensions())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}

func getHighlighted(this js.Value, args []js.Value) interface{} {
	data, _ := json.Marshal(eng.Highlighted())
	return js.ValueOf(string(data))
}

func isResizing(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Resizing())
}
