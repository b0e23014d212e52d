package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"flag"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"revelare.io/fractal/cidutil"
	"revelare.io/fractal/custody"
	"revelare.io/fractal/ifs"
	"revelare.io/fractal/keys"
	"revelare.io/fractal/record"
	"revelare.io/fractal/render"
	"revelare.io/fractal/storage"
	"revelare.io/fractal/storage/bundle"
	"revelare.io/fractal/storage/vaultconfig"
	"revelare.io/fractal/storage/vaultregistry"

	_ "revelare.io/fractal/storage/grpcvault"
	_ "revelare.io/fractal/storage/localfs"
	_ "revelare.io/fractal/storage/memory"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "encode":
		return cmdEncode(args[1:], out, errOut)
	case "decode":
		return cmdDecode(args[1:], out, errOut)
	case "render":
		return cmdRender(args[1:], out, errOut)
	case "inspect":
		return cmdInspect(args[1:], out, errOut)
	case "record-cid":
		return cmdRecordCID(args[1:], out, errOut)
	case "key-text":
		return cmdKeyText(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "seal":
		return cmdSeal(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "vault":
		return cmdVault(args[1:], out, errOut)
	case "bundle":
		return cmdBundle(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "revelare: fractal record codec, custody seals, and evidence vault")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  revelare encode [--key <key.txt>] [--out <record.json>] [--progress] <file>")
	fmt.Fprintln(w, "  revelare decode [--out <file>] [--progress] <record.json>")
	fmt.Fprintln(w, "  revelare render [--width N] [--height N] [--bg white|black] --out <file.png> <record.json>")
	fmt.Fprintln(w, "  revelare inspect <record.json>")
	fmt.Fprintln(w, "  revelare record-cid <record.json>")
	fmt.Fprintln(w, "  revelare key-text parse <key.txt>")
	fmt.Fprintln(w, "  revelare key-text format [--record <record.json>]")
	fmt.Fprintln(w, "  revelare key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  revelare key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  revelare key list")
	fmt.Fprintln(w, "  revelare key export --name <name> [--role <role>]")
	fmt.Fprintln(w, "  revelare seal (--seed-hex <64hex> | --signer <name> [--signer-role <role>] | --key-file <path>) [--sealed-at <RFC3339>|--now] <record.json>")
	fmt.Fprintln(w, "  revelare verify [--record <record.json>] <seal>")
	fmt.Fprintln(w, "  revelare vault put [vault flags] <file>")
	fmt.Fprintln(w, "  revelare vault get [vault flags] --cid <cid> [--out <file>]")
	fmt.Fprintln(w, "  revelare vault has [vault flags] --cid <cid>")
	fmt.Fprintln(w, "  revelare bundle export [vault flags] --out <file> [--index] <cid> [<cid> ...]")
	fmt.Fprintln(w, "  revelare bundle import [vault flags] [--ignore-unknown] <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - encode writes canonical record JSON; the embedded key alone decodes it")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars) ed25519 seed")
	fmt.Fprintln(w, "  - keys are stored under ~/.revelare/keys/<name> (0600 private key files)")
	fmt.Fprintln(w, "  - vault flags: --backend <name> plus backend flags, or --config <vault.json>")
	fmt.Fprintln(w, "  - seal writes canonical seal bytes to stdout (no trailing newline)")
}

// ---- codec commands ----

func progressOptions(enabled bool, errOut io.Writer) *ifs.Options {
	if !enabled {
		return nil
	}
	return &ifs.Options{
		Progress: func(pct float64, status string) {
			fmt.Fprintf(errOut, "\r%s: %.1f%%", status, pct)
			if pct >= 100 {
				fmt.Fprintln(errOut)
			}
		},
	}
}

func loadRecord(path string, errOut io.Writer) (*record.Record, []byte, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(path), err)
		return nil, nil, false
	}
	rec, err := record.Parse(b)
	if err != nil {
		fmt.Fprintf(errOut, "invalid record: %v\n", err)
		return nil, nil, false
	}
	return rec, b, true
}

func cmdEncode(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var keyPath string
	var outPath string
	var progress bool
	fs.StringVar(&keyPath, "key", "", "Key text file (defaults to the built-in key)")
	fs.StringVar(&outPath, "out", "", "Output record file (default <file>.json)")
	fs.BoolVar(&progress, "progress", false, "Print encode progress to stderr")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: revelare encode [--key <key.txt>] [--out <record.json>] [--progress] <file>")
		return 2
	}
	path := fs.Arg(0)

	set := ifs.DefaultSet()
	if keyPath != "" {
		kb, err := os.ReadFile(keyPath)
		if err != nil {
			fmt.Fprintf(errOut, "read key: %v\n", err)
			return 1
		}
		var perr error
		set, perr = ifs.ParseKeyText(kb)
		if perr != nil {
			fmt.Fprintf(errOut, "invalid key: %v\n", perr)
			return 2
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(path), err)
		return 1
	}

	rec, err := ifs.Encode(context.Background(), data, filepath.Base(path), set, progressOptions(progress, errOut))
	if err != nil {
		fmt.Fprintf(errOut, "encode: %v\n", err)
		return 1
	}
	rendered, err := record.Render(rec)
	if err != nil {
		fmt.Fprintf(errOut, "render record: %v\n", err)
		return 1
	}

	if outPath == "" {
		outPath = path + ".json"
	}
	if err := os.WriteFile(outPath, rendered, 0o600); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", outPath, err)
		return 1
	}
	fmt.Fprintf(errOut, "Record-CID: %s\n", cidutil.CIDv1RawSHA256(rendered))
	fmt.Fprintf(out, "%s\n", outPath)
	return 0
}

func cmdDecode(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var outPath string
	var progress bool
	fs.StringVar(&outPath, "out", "", "Output file (default: the record's original filename)")
	fs.BoolVar(&progress, "progress", false, "Print decode progress to stderr")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: revelare decode [--out <file>] [--progress] <record.json>")
		return 2
	}

	rec, _, ok := loadRecord(fs.Arg(0), errOut)
	if !ok {
		return 1
	}
	data, filename, err := ifs.Decode(context.Background(), rec, progressOptions(progress, errOut))
	if err != nil {
		fmt.Fprintf(errOut, "decode: %v\n", err)
		return 1
	}

	if outPath == "" {
		outPath = filename
	}
	if outPath == "" {
		fmt.Fprintln(errOut, "record has no filename; use --out")
		return 2
	}
	if err := os.WriteFile(outPath, data, 0o600); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", outPath, err)
		return 1
	}
	fmt.Fprintf(out, "%s\n", outPath)
	return 0
}

func cmdRender(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var width int
	var height int
	var bg string
	var outPath string
	fs.IntVar(&width, "width", 800, "Image width in pixels")
	fs.IntVar(&height, "height", 800, "Image height in pixels")
	fs.StringVar(&bg, "bg", "white", "Background color: white or black")
	fs.StringVar(&outPath, "out", "", "Output PNG file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if outPath == "" {
		fmt.Fprintln(errOut, "missing --out")
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: revelare render [--width N] [--height N] [--bg white|black] --out <file.png> <record.json>")
		return 2
	}

	var bgColor color.Color
	switch strings.ToLower(strings.TrimSpace(bg)) {
	case "", "white":
		bgColor = color.White
	case "black":
		bgColor = color.Black
	default:
		fmt.Fprintln(errOut, "invalid --bg (expected white or black)")
		return 2
	}

	rec, _, ok := loadRecord(fs.Arg(0), errOut)
	if !ok {
		return 1
	}
	png, err := render.PNG(rec, width, height, bgColor)
	if err != nil {
		fmt.Fprintf(errOut, "render: %v\n", err)
		return 1
	}
	if err := os.WriteFile(outPath, png, 0o600); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", outPath, err)
		return 1
	}
	fmt.Fprintf(out, "%s\n", outPath)
	return 0
}

func cmdInspect(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: revelare inspect <record.json>")
		return 2
	}

	rec, raw, ok := loadRecord(fs.Arg(0), errOut)
	if !ok {
		return 1
	}
	fmt.Fprintf(out, "Filename:        %s\n", rec.OriginalFilename)
	fmt.Fprintf(out, "Version:         %s\n", rec.Metadata.Version)
	fmt.Fprintf(out, "Encryption-Type: %s\n", rec.Metadata.EncryptionType)
	fmt.Fprintf(out, "Original-Size:   %d\n", rec.Metadata.OriginalSize)
	fmt.Fprintf(out, "Point-Count:     %d\n", len(rec.Points))
	fmt.Fprintf(out, "Transforms:      %d\n", len(rec.IFSKey))
	fmt.Fprintf(out, "Record-CID:      %s\n", cidutil.CIDv1RawSHA256(raw))
	return 0
}

func cmdRecordCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("record-cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: revelare record-cid <record.json>")
		return 2
	}
	rec, _, ok := loadRecord(fs.Arg(0), errOut)
	if !ok {
		return 1
	}
	id, err := rec.CID()
	if err != nil {
		fmt.Fprintf(errOut, "cid: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, id)
	return 0
}

// ---- key text ----

func cmdKeyText(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: revelare key-text <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: parse, format")
		return 2
	}
	switch args[0] {
	case "parse":
		fs := flag.NewFlagSet("key-text parse", flag.ContinueOnError)
		fs.SetOutput(errOut)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: revelare key-text parse <key.txt>")
			return 2
		}
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "read key: %v\n", err)
			return 1
		}
		set, err := ifs.ParseKeyText(b)
		if err != nil {
			fmt.Fprintf(errOut, "invalid key: %v\n", err)
			return 1
		}
		_, _ = out.Write(ifs.FormatKeyText(set))
		return 0
	case "format":
		fs := flag.NewFlagSet("key-text format", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var recordPath string
		fs.StringVar(&recordPath, "record", "", "Format the key embedded in a record (default: the built-in key)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 0 {
			fmt.Fprintln(errOut, "usage: revelare key-text format [--record <record.json>]")
			return 2
		}
		set := ifs.DefaultSet()
		if recordPath != "" {
			rec, _, ok := loadRecord(recordPath, errOut)
			if !ok {
				return 1
			}
			var err error
			set, err = ifs.SetFromKeys(rec.IFSKey)
			if err != nil {
				fmt.Fprintf(errOut, "invalid embedded key: %v\n", err)
				return 1
			}
		}
		_, _ = out.Write(ifs.FormatKeyText(set))
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key-text subcommand: %s\n", args[0])
		return 2
	}
}

// ---- key management ----

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "export":
		return cmdKeyExport(args[1:], out, errOut)
	case "help", "-h", "--help":
		printKeyUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "revelare key: minimal local key management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  revelare key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  revelare key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  revelare key list")
	fmt.Fprintln(w, "  revelare key export --name <name> [--role <role>]")
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var seedHex string
	var force bool
	fs.StringVar(&name, "name", "", "Key name (directory under ~/.revelare/keys)")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional ed25519 seed as 64 hex chars (for reproducible setups)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}

	var seed []byte
	if seedHex != "" {
		var derr error
		seed, derr = keys.ParseSeedHex(seedHex)
		if derr != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", derr)
			return 2
		}
	} else {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	examinerKey, rootPath, err := ks.InitializeRootKey(name, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created root key: %s\n", examinerKey)
	fmt.Fprintf(out, "Stored at: %s\n", rootPath)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var from string
	var role string
	var force bool
	fs.StringVar(&from, "from", "", "Root key name")
	fs.StringVar(&role, "role", "", "Role identifier (e.g. examiner, custodian)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" {
		fmt.Fprintln(errOut, "missing --from")
		return 2
	}
	if role == "" {
		fmt.Fprintln(errOut, "missing --role")
		return 2
	}
	if err := keys.CheckKeyName(from); err != nil {
		fmt.Fprintf(errOut, "invalid --from: %v\n", err)
		return 2
	}
	if err := keys.CheckRole(role); err != nil {
		fmt.Fprintf(errOut, "invalid --role: %v\n", err)
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	examinerKey, rolePath, err := ks.DeriveKeyFromRole(from, role, force)
	if err != nil {
		fmt.Fprintf(errOut, "derive role key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created role key: %s\n", examinerKey)
	fmt.Fprintf(out, "Stored at: %s\n", rolePath)
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var role string
	fs.StringVar(&name, "name", "", "Key name")
	fs.StringVar(&role, "role", "", "Optional role (if set, exports derived role key)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	if role != "" {
		if err := keys.CheckRole(role); err != nil {
			fmt.Fprintf(errOut, "invalid --role: %v\n", err)
			return 2
		}
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	examinerKey, err := ks.ExportKey(name, role)
	if err != nil {
		fmt.Fprintf(errOut, "export key: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, examinerKey)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	entries, err := ks.ListKeys()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\n", e.Identifier)
		for _, r := range e.Permissions {
			fmt.Fprintf(out, "  - %s\n", r)
		}
	}
	return 0
}

// ---- custody ----

func cmdSeal(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("seal", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var seedHex string
	var signerName string
	var signerRole string
	var keyFile string
	var sealedAt string
	var now bool
	fs.StringVar(&seedHex, "seed-hex", "", "ed25519 seed as 64 hex chars")
	fs.StringVar(&signerName, "signer", "", "Use a stored key by name (from 'revelare key init')")
	fs.StringVar(&signerRole, "signer-role", "", "When using --signer, optionally use a derived role key")
	fs.StringVar(&keyFile, "key-file", "", "Path to a seed file (hex) created by 'revelare key init/derive'")
	fs.StringVar(&sealedAt, "sealed-at", "", "Optional RFC3339 timestamp recorded in META (omit for deterministic output)")
	fs.BoolVar(&now, "now", false, "Record the current UTC time as Sealed-At")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: revelare seal [signer flags] <record.json>")
		return 2
	}
	if seedHex == "" && signerName == "" && keyFile == "" {
		fmt.Fprintln(errOut, "missing signer: use --seed-hex, --signer, or --key-file")
		return 2
	}
	if seedHex != "" && (signerName != "" || keyFile != "") {
		fmt.Fprintln(errOut, "conflicting signer flags: --seed-hex cannot be combined with --signer or --key-file")
		return 2
	}
	if signerName != "" && keyFile != "" {
		fmt.Fprintln(errOut, "conflicting signer flags: --signer cannot be combined with --key-file")
		return 2
	}
	if sealedAt != "" && now {
		fmt.Fprintln(errOut, "conflicting flags: --sealed-at cannot be combined with --now")
		return 2
	}
	if sealedAt != "" {
		if _, err := time.Parse(time.RFC3339, sealedAt); err != nil {
			fmt.Fprintf(errOut, "invalid --sealed-at (expected RFC3339): %v\n", err)
			return 2
		}
	}
	if now {
		sealedAt = time.Now().UTC().Format(time.RFC3339)
	}

	rec, _, ok := loadRecord(fs.Arg(0), errOut)
	if !ok {
		return 1
	}

	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	seed, err := ks.LoadSeed(seedHex, signerName, signerRole, keyFile)
	if err != nil {
		fmt.Fprintf(errOut, "invalid signer: %v\n", err)
		return 2
	}
	priv := ed25519.NewKeyFromSeed(seed)

	seal, err := custody.SealRecordEd25519(rec, priv, &custody.SealOptions{SealedAt: sealedAt})
	if err != nil {
		fmt.Fprintf(errOut, "seal: %v\n", err)
		return 1
	}
	fmt.Fprintf(errOut, "Examiner-Key: %s\n", seal.ExaminerKey())
	fmt.Fprintf(errOut, "Seal-CID: %s\n", seal.CID())
	_, _ = out.Write(seal.CanonicalBytes())
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var recordPath string
	fs.StringVar(&recordPath, "record", "", "Check the seal against this record file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: revelare verify [--record <record.json>] <seal>")
		return 2
	}

	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read seal: %v\n", err)
		return 1
	}
	seal, err := custody.Parse(b)
	if err != nil {
		fmt.Fprintf(errOut, "invalid seal: %v\n", err)
		return 1
	}
	if err := seal.Verify(); err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}

	if recordPath != "" {
		rec, _, ok := loadRecord(recordPath, errOut)
		if !ok {
			return 1
		}
		recordCID, cerr := rec.CID()
		if cerr != nil {
			fmt.Fprintf(errOut, "record cid: %v\n", cerr)
			return 1
		}
		if recordCID != seal.RecordCID() {
			fmt.Fprintln(errOut, "seal does not match record: Record-CID differs")
			return 1
		}
		if seal.PointCount() != len(rec.Points) {
			fmt.Fprintln(errOut, "seal does not match record: Point-Count differs")
			return 1
		}
		if seal.Filename() != rec.OriginalFilename {
			fmt.Fprintln(errOut, "seal does not match record: Filename differs")
			return 1
		}
	}

	fmt.Fprintf(errOut, "Examiner-Key: %s\n", seal.ExaminerKey())
	_, _ = fmt.Fprintln(out, "OK")
	return 0
}

// ---- vault ----

type vaultFlags struct {
	backend      string
	configPath   string
	listBackends bool
}

func (v *vaultFlags) add(fs *flag.FlagSet) {
	fs.StringVar(&v.backend, "backend", "", "Vault backend name (default localfs; with --config, the preferred backend)")
	fs.StringVar(&v.configPath, "config", "", "Vault config file (JSON); overrides --backend flags")
	fs.BoolVar(&v.listBackends, "list-backends", false, "List supported backends and exit")
	vaultregistry.RegisterFlags(fs, vaultregistry.UsageCLI)
}

func (v *vaultFlags) open() (storage.CAS, func() error, error) {
	if v.configPath != "" {
		cfg, err := vaultconfig.LoadFile(v.configPath)
		if err != nil {
			return nil, nil, err
		}
		return cfg.Open(vaultregistry.UsageCLI, v.backend)
	}
	backend := v.backend
	if backend == "" {
		backend = "localfs"
	}
	return vaultregistry.Open(backend, vaultregistry.UsageCLI)
}

func printBackends(w io.Writer) {
	for _, b := range vaultregistry.List(vaultregistry.UsageCLI) {
		if b.Description == "" {
			_, _ = fmt.Fprintf(w, "%s\n", b.Name)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", b.Name, b.Description)
	}
}

func cmdVault(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: revelare vault <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: put, get, has")
		return 2
	}
	switch args[0] {
	case "put":
		return cmdVaultPut(args[1:], out, errOut)
	case "get":
		return cmdVaultGet(args[1:], out, errOut)
	case "has":
		return cmdVaultHas(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown vault subcommand: %s\n", args[0])
		return 2
	}
}

func cmdVaultPut(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("vault put", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var vf vaultFlags
	vf.add(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if vf.listBackends {
		printBackends(out)
		return 0
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: revelare vault put [vault flags] <file>")
		return 2
	}

	cas, closeFn, err := vf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	p := fs.Arg(0)
	b, err := os.ReadFile(p)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(p), err)
		return 1
	}
	id, err := cas.Put(b)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	_, _ = fmt.Fprintln(out, id.String())
	return 0
}

func cmdVaultGet(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("vault get", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var vf vaultFlags
	vf.add(fs)

	var cidStr string
	var outPath string
	fs.StringVar(&cidStr, "cid", "", "CID to fetch")
	fs.StringVar(&outPath, "out", "", "Output file (optional; default stdout)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if vf.listBackends {
		printBackends(out)
		return 0
	}
	if cidStr == "" {
		fmt.Fprintln(errOut, "missing --cid")
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: revelare vault get [vault flags] --cid <cid> [--out <file>]")
		return 2
	}

	cas, closeFn, err := vf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	id, err := cid.Decode(cidStr)
	if err != nil {
		fmt.Fprintln(errOut, storage.ErrInvalidCID)
		return 1
	}
	b, err := cas.Get(id)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if outPath == "" {
		_, _ = out.Write(b)
		return 0
	}
	if err := os.WriteFile(outPath, b, 0o600); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", outPath, err)
		return 1
	}
	return 0
}

func cmdVaultHas(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("vault has", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var vf vaultFlags
	vf.add(fs)

	var cidStr string
	fs.StringVar(&cidStr, "cid", "", "CID to check")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if vf.listBackends {
		printBackends(out)
		return 0
	}
	if cidStr == "" {
		fmt.Fprintln(errOut, "missing --cid")
		return 2
	}

	cas, closeFn, err := vf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	id, err := cid.Decode(cidStr)
	if err != nil {
		fmt.Fprintln(errOut, storage.ErrInvalidCID)
		return 1
	}
	if cas.Has(id) {
		_, _ = fmt.Fprintln(out, "true")
		return 0
	}
	_, _ = fmt.Fprintln(out, "false")
	return 1
}

// ---- bundle ----

func cmdBundle(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: revelare bundle <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: export, import")
		return 2
	}
	switch args[0] {
	case "export":
		return cmdBundleExport(args[1:], out, errOut)
	case "import":
		return cmdBundleImport(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown bundle subcommand: %s\n", args[0])
		return 2
	}
}

func cmdBundleExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("bundle export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var vf vaultFlags
	vf.add(fs)

	var outPath string
	var includeIndex bool
	fs.StringVar(&outPath, "out", "", "Output bundle file")
	fs.BoolVar(&includeIndex, "index", false, "Include index.json in the bundle")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if vf.listBackends {
		printBackends(out)
		return 0
	}
	if outPath == "" {
		fmt.Fprintln(errOut, "missing --out")
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: revelare bundle export [vault flags] --out <file> [--index] <cid> [<cid> ...]")
		return 2
	}

	ids := make([]cid.Cid, 0, fs.NArg())
	for _, s := range fs.Args() {
		id, err := cid.Decode(s)
		if err != nil {
			fmt.Fprintf(errOut, "invalid cid %q: %v\n", s, storage.ErrInvalidCID)
			return 2
		}
		ids = append(ids, id)
	}

	cas, closeFn, err := vf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	f, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		fmt.Fprintf(errOut, "create %s: %v\n", outPath, err)
		return 1
	}
	defer f.Close()

	if err := bundle.Export(f, cas, ids, bundle.ExportOptions{IncludeIndex: includeIndex}); err != nil {
		fmt.Fprintf(errOut, "export: %v\n", err)
		return 1
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", outPath, err)
		return 1
	}
	fmt.Fprintf(out, "%s\n", outPath)
	return 0
}

func cmdBundleImport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("bundle import", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var vf vaultFlags
	vf.add(fs)

	var ignoreUnknown bool
	fs.BoolVar(&ignoreUnknown, "ignore-unknown", false, "Ignore unrecognized bundle entries")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if vf.listBackends {
		printBackends(out)
		return 0
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: revelare bundle import [vault flags] [--ignore-unknown] <file>")
		return 2
	}

	cas, closeFn, err := vf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "open %s: %v\n", fs.Arg(0), err)
		return 1
	}
	defer f.Close()

	if err := bundle.ImportWithOptions(f, cas, bundle.ImportOptions{IgnoreUnknown: ignoreUnknown}); err != nil {
		fmt.Fprintf(errOut, "import: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, "OK")
	return 0
}
