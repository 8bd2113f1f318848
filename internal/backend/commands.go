package backend

import (
	"fmt"

	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/scene"
	"github.com/1broseidon/splbe/internal/uithread"
	"github.com/1broseidon/splbe/internal/window"
)

// shape is how a command answers.
type shape int

const (
	// fire commands write nothing on success.
	fire shape = iota
	// ack commands write result:ok.
	ack
	// query commands write result:<value>.
	query
)

type command struct {
	shape shape
	run   func(c *call) (string, error)
}

// call is one command invocation: its argument cursor and the back-end.
type call struct {
	*protocol.Args
	b        *Backend
	name     string
	panicked bool
}

// do posts fn to the UI goroutine. A failure inside fn is handled like the
// failure of a fire-and-forget command.
func (c *call) do(fn func() error) error {
	b, name := c.b, c.name
	return b.ui.Post(func() {
		if err := fn(); err != nil {
			b.dropped(name, err)
		}
	})
}

// wait runs fn on the UI goroutine and returns its error.
func (c *call) wait(fn func() error) error {
	return c.b.ui.PostAndWait(fn)
}

// ask runs fn on the UI goroutine and returns its value.
func ask[T any](c *call, fn func() (T, error)) (T, error) {
	return uithread.Call(c.b.ui, fn)
}

// object looks up an object. UI goroutine only.
func (c *call) object(id string) (*scene.Object, error) {
	o, ok := c.b.reg.Object(id)
	if !ok {
		return nil, protocol.NotFound("object", id)
	}
	return o, nil
}

// window looks up an open window. UI goroutine only.
func (c *call) window(id string) (*window.Window, error) {
	w, ok := c.b.reg.Window(id)
	if !ok {
		return nil, protocol.NotFound("window", id)
	}
	return w, nil
}

// widgetOf looks up an interactor whose widget is a T.
func widgetOf[T any](c *call, id string) (*scene.Object, T, error) {
	var zero T
	o, err := c.object(id)
	if err != nil {
		return nil, zero, err
	}
	w, ok := o.Widget().(T)
	if !ok {
		return nil, zero, protocol.Mismatch(c.name, id)
	}
	return o, w, nil
}

// edit posts a mutation of object id and repaints wherever it shows.
func (c *call) edit(id string, fn func(o *scene.Object) error) error {
	return c.do(func() error {
		o, err := c.object(id)
		if err != nil {
			return err
		}
		if err := fn(o); err != nil {
			return err
		}
		c.b.changed(o)
		return nil
	})
}

// require fails with a type mismatch unless ok.
func (c *call) require(ok bool, id string) error {
	if !ok {
		return protocol.Mismatch(c.name, id)
	}
	return nil
}

func (c *call) errorf(format string, args ...any) error {
	return fmt.Errorf(c.name+": "+format, args...)
}

// commandTable builds the dispatch table.
func commandTable() map[string]command {
	return map[string]command{
		"GWindow.create":             {ack, windowCreate},
		"GWindow.close":              {fire, windowClose},
		"GWindow.delete":             {fire, windowClose},
		"GWindow.clear":              {fire, windowClear},
		"GWindow.repaint":            {fire, windowRepaint},
		"GWindow.requestFocus":       {fire, windowRequestFocus},
		"GWindow.setResizable":       {fire, windowSetResizable},
		"GWindow.setTitle":           {fire, windowSetTitle},
		"GWindow.setVisible":         {fire, windowSetVisible},
		"GWindow.draw":               {fire, windowDraw},
		"GWindow.addToRegion":        {fire, windowAddToRegion},
		"GWindow.removeFromRegion":   {fire, windowRemoveFromRegion},
		"GWindow.setRegionAlignment": {fire, windowSetRegionAlignment},
		"GWindow.getCanvasWidth":     {query, windowCanvasWidth},
		"GWindow.getCanvasHeight":    {query, windowCanvasHeight},
		"GWindow.getScreenWidth":     {query, screenWidth},
		"GWindow.getScreenHeight":    {query, screenHeight},
		"GWindow.exitGraphics":       {fire, exitGraphics},

		"TopCompound.create": {fire, topCompoundCreate},
		"GCompound.create":   {fire, compoundCreate},
		"GCompound.add":      {ack, compoundAdd},

		"GObject.remove":       {fire, objectRemove},
		"GObject.delete":       {fire, objectDelete},
		"GObject.setLocation":  {fire, objectSetLocation},
		"GObject.setSize":      {fire, objectSetSize},
		"GObject.setColor":     {fire, objectSetColor},
		"GObject.setFillColor": {fire, objectSetFillColor},
		"GObject.setFilled":    {fire, objectSetFilled},
		"GObject.setVisible":   {fire, objectSetVisible},
		"GObject.setLineWidth": {fire, objectSetLineWidth},
		"GObject.rotate":       {fire, objectRotate},
		"GObject.scale":        {fire, objectScale},
		"GObject.sendToFront":  {fire, zorder((*scene.Object).SendToFront)},
		"GObject.sendToBack":   {fire, zorder((*scene.Object).SendToBack)},
		"GObject.sendForward":  {fire, zorder((*scene.Object).SendForward)},
		"GObject.sendBackward": {fire, zorder((*scene.Object).SendBackward)},
		"GObject.getBounds":    {query, objectBounds},
		"GObject.contains":     {query, objectContains},

		"GRect.create":           {fire, rectCreate},
		"GOval.create":           {fire, ovalCreate},
		"G3DRect.create":         {fire, rect3DCreate},
		"G3DRect.setRaised":      {fire, rect3DSetRaised},
		"GRoundRect.create":      {fire, roundRectCreate},
		"GLine.create":           {fire, lineCreate},
		"GLine.setStartPoint":    {fire, lineSetStartPoint},
		"GLine.setEndPoint":      {fire, lineSetEndPoint},
		"GArc.create":            {fire, arcCreate},
		"GArc.setStartAngle":     {fire, arcSetStartAngle},
		"GArc.setSweepAngle":     {fire, arcSetSweepAngle},
		"GArc.setFrameRectangle": {fire, arcSetFrameRectangle},
		"GPolygon.create":        {fire, polygonCreate},
		"GPolygon.addVertex":     {fire, polygonAddVertex},
		"GLabel.create":          {fire, labelCreate},
		"GLabel.setFont":         {fire, labelSetFont},
		"GLabel.setLabel":        {fire, labelSetLabel},
		"GLabel.getFontAscent":   {query, labelAscent},
		"GLabel.getFontDescent":  {query, labelDescent},
		"GLabel.getGLabelSize":   {query, labelSize},
		"GImage.create":          {query, imageCreate},

		"GInteractor.setActionCommand": {fire, interactorSetActionCommand},
		"GInteractor.getSize":          {query, interactorSize},
		"GButton.create":               {fire, buttonCreate},
		"GCheckBox.create":             {fire, checkBoxCreate},
		"GCheckBox.isSelected":         {query, checkBoxIsSelected},
		"GCheckBox.setSelected":        {fire, checkBoxSetSelected},
		"GSlider.create":               {fire, sliderCreate},
		"GSlider.getValue":             {query, sliderValue},
		"GSlider.setValue":             {fire, sliderSetValue},
		"GTextField.create":            {fire, textFieldCreate},
		"GTextField.getText":           {query, textFieldText},
		"GTextField.setText":           {fire, textFieldSetText},
		"GChooser.create":              {fire, chooserCreate},
		"GChooser.addItem":             {fire, chooserAddItem},
		"GChooser.getSelectedItem":     {query, chooserSelectedItem},
		"GChooser.setSelectedItem":     {fire, chooserSetSelectedItem},
		"GTextArea.create":             {fire, textAreaCreate},
		"GTextArea.getText":            {query, textAreaText},
		"GTextArea.setText":            {fire, textAreaSetText},
		"GTextArea.setEditable":        {fire, textAreaSetEditable},
		"GTextArea.setFont":            {fire, textAreaSetFont},
		"GTextArea.setBackgroundColor": {fire, textAreaSetBackground},

		"GBufferedImage.create":     {fire, bufferCreate},
		"GBufferedImage.fill":       {fire, bufferFill},
		"GBufferedImage.fillRegion": {fire, bufferFillRegion},
		"GBufferedImage.setRGB":     {fire, bufferSetRGB},
		"GBufferedImage.resize":     {fire, bufferResize},
		"GBufferedImage.load":       {query, bufferLoad},
		"GBufferedImage.save":       {ack, bufferSave},

		"GTimer.create":      {fire, timerCreate},
		"GTimer.deleteTimer": {fire, timerDelete},
		"GTimer.startTimer":  {fire, timerStart},
		"GTimer.stopTimer":   {fire, timerStop},
		"GTimer.pause":       {ack, timerPause},

		"GEvent.getNextEvent": {query, nextEvent},
		"GEvent.waitForEvent": {query, waitForEvent},

		"Sound.create": {ack, soundCreate},
		"Sound.delete": {fire, soundDelete},
		"Sound.play":   {fire, soundPlay},

		"File.openFileDialog":           {query, openFileDialog},
		"GOptionPane.showConfirmDialog": {query, confirmDialog},
		"GOptionPane.showInputDialog":   {query, inputDialog},
		"GOptionPane.showMessageDialog": {ack, messageDialog},
		"GOptionPane.showOptionDialog":  {query, optionDialog},

		"JBEConsole.clear":       {fire, consoleClear},
		"JBEConsole.print":       {fire, consolePrint},
		"JBEConsole.println":     {fire, consolePrintln},
		"JBEConsole.getLine":     {query, consoleGetLine},
		"JBEConsole.setFont":     {fire, consoleSetFont},
		"JBEConsole.setLocation": {fire, consoleSetLocation},
		"JBEConsole.setSize":     {fire, consoleSetSize},
	}
}

// commandNames lists the dispatch table.
func commandNames() []string {
	table := commandTable()
	out := make([]string, 0, len(table))
	for name := range table {
		out = append(out, name)
	}
	return out
}
