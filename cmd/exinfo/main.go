// Command exinfo compiles a vocal exercise definition and prints its pass
// timeline and range-traversal plan.
//
// Usage:
//
//	exinfo [flags] exercise.yaml
//
// Examples:
//
//	exinfo five-tone.yaml
//	exinfo -root G3 -direction descending five-tone.yaml
//	exinfo -range C3:C5 -tempo 0.5 five-tone.yaml
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ricardo736/voxlab-sub000/exercise"
	"github.com/ricardo736/voxlab-sub000/music"
)

func main() {
	root := flag.String("root", "C4", "root note of the printed pass")
	direction := flag.String("direction", "ascending", "pass direction (ascending|descending)")
	tempo := flag.Float64("tempo", 1.0, "tempo multiplier")
	rangeSpec := flag.String("range", "", "vocal range low:high for the traversal plan, e.g. C3:C5")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: exinfo [flags] exercise.yaml\n\n")
		fmt.Fprintf(os.Stderr, "Compiles an exercise definition and prints its timeline.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  exinfo five-tone.yaml\n")
		fmt.Fprintf(os.Stderr, "  exinfo -root G3 -direction descending five-tone.yaml\n")
		fmt.Fprintf(os.Stderr, "  exinfo -range C3:C5 five-tone.yaml\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	def, err := exercise.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	compiler, err := exercise.NewCompiler(def, exercise.WithTempoMultiplier(*tempo))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	rootPitch, err := music.ParseNote(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	dir := exercise.Ascending
	switch strings.ToLower(*direction) {
	case "ascending":
	case "descending":
		dir = exercise.Descending
	default:
		fmt.Fprintf(os.Stderr, "error: unknown direction %q\n", *direction)
		os.Exit(2)
	}

	printPass(compiler, def, rootPitch, dir)

	if *rangeSpec != "" {
		if err := printTraversal(compiler, *rangeSpec); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

func printPass(c *exercise.Compiler, def *exercise.Definition, root int, dir exercise.Direction) {
	pass := c.CompilePass(root, dir)

	fmt.Printf("%s  %.0f BPM  root %s  %s  total %s (%.2g beats)\n\n",
		def.ExerciseID, def.TempoBPM, music.NoteName(root), dir, pass.Total, pass.TotalBeats)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Start\tDuration\tKind\tTarget\tLyric")
	fmt.Fprintln(tw, "-----\t--------\t----\t------\t-----")
	for _, ev := range pass.Events {
		fmt.Fprintf(tw, "%v\t%v\t%s\t%s\t%s\n",
			ev.Start, ev.Duration, kindName(ev.Kind), targetName(ev), ev.Lyric)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func printTraversal(c *exercise.Compiler, spec string) error {
	low, high, ok := strings.Cut(spec, ":")
	if !ok {
		return fmt.Errorf("range must be low:high, got %q", spec)
	}
	lowPitch, err := music.ParseNote(low)
	if err != nil {
		return err
	}
	highPitch, err := music.ParseNote(high)
	if err != nil {
		return err
	}

	traversal, err := c.Traverse(exercise.Range{Low: lowPitch, High: highPitch})
	if err != nil {
		return err
	}

	fmt.Printf("\nTraversal %s..%s:\n", music.NoteName(lowPitch), music.NoteName(highPitch))
	root, dir := traversal.Start()
	count := 0
	for done := false; !done; {
		fmt.Printf("  pass %2d: root %-4s %s\n", count+1, music.NoteName(root), dir)
		count++
		root, dir, done = traversal.Next(root, dir)
	}
	fmt.Printf("%d passes total\n", count)
	return nil
}

func kindName(k exercise.EventKind) string {
	switch k {
	case exercise.KindNote:
		return "note"
	case exercise.KindRest:
		return "rest"
	case exercise.KindChord:
		return "chord"
	default:
		return "?"
	}
}

func targetName(ev exercise.Event) string {
	switch ev.Kind {
	case exercise.KindNote:
		return music.NoteName(ev.Semitone)
	case exercise.KindChord:
		names := make([]string, len(ev.ChordSemitones))
		for i, s := range ev.ChordSemitones {
			names[i] = music.NoteName(s)
		}
		return strings.Join(names, "+")
	default:
		return "-"
	}
}
