// pmt is a small demonstration CLI around the merkle tree. It is presentation
// only; the library contract lives in the merkletree package.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/spf13/cobra"

	merkletree "github.com/sunmoon11100/poseidon-merkle-tree"
)

var (
	fDepth   int
	fLeaves  int
	fHistory int
)

var rootCmd = &cobra.Command{
	Use:   "pmt",
	Short: "pmt inspects and demonstrates the incremental poseidon merkle tree",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the library version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(merkletree.Version.String())
	},
}

var zerosCmd = &cobra.Command{
	Use:   "zeros",
	Short: "print the empty-subtree hash at every level for a given depth",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := merkletree.New(fDepth)
		if err != nil {
			return err
		}
		for i, z := range t.ZeroHashes() {
			b := z.Bytes()
			fmt.Printf("level %2d  %s\n", i, hex.EncodeToString(b[:]))
		}
		return nil
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "insert random leaves and show the evolving root and history window",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := merkletree.New(fDepth, merkletree.WithHistorySize(fHistory))
		if err != nil {
			return err
		}
		if uint64(fLeaves) > t.Capacity() {
			return fmt.Errorf("%d leaves exceed capacity %d", fLeaves, t.Capacity())
		}

		emptyRoot := t.Root()
		printRoot("empty tree", emptyRoot)

		for i := 0; i < fLeaves; i++ {
			leaf, err := randomElement()
			if err != nil {
				return err
			}
			index, err := t.InsertElement(leaf)
			if err != nil {
				return err
			}
			printRoot(fmt.Sprintf("after leaf %d", index), t.Root())
		}

		fmt.Printf("leaves %d/%d, empty root still known: %v\n",
			t.LeafCount(), t.Capacity(), t.IsKnownRoot(emptyRoot))
		return nil
	},
}

func printRoot(label string, root fr.Element) {
	b := root.Bytes()
	fmt.Printf("%-14s %s\n", label, hex.EncodeToString(b[:]))
}

func randomElement() (fr.Element, error) {
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		return e, err
	}
	return e, nil
}

func init() {
	zerosCmd.Flags().IntVar(&fDepth, "depth", 4, "tree depth")
	demoCmd.Flags().IntVar(&fDepth, "depth", 4, "tree depth")
	demoCmd.Flags().IntVar(&fLeaves, "leaves", 5, "number of random leaves to insert")
	demoCmd.Flags().IntVar(&fHistory, "history", merkletree.DefaultHistorySize, "root history window size")
	rootCmd.AddCommand(versionCmd, zerosCmd, demoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
