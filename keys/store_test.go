package keys

import (
	"strings"
	"testing"
)

func TestKeyStoreInitDeriveExport(t *testing.T) {
	ks, err := CreateKeyStore(t.TempDir())
	if err != nil {
		t.Fatalf("CreateKeyStore: %v", err)
	}

	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 1)
	}

	rootKey, rootPath, err := ks.InitializeRootKey("lab", seed, false)
	if err != nil {
		t.Fatalf("InitializeRootKey: %v", err)
	}
	if rootKey != ExaminerKeyFromSeed(seed) {
		t.Fatalf("root key mismatch")
	}
	if !strings.HasSuffix(rootPath, "lab/root.key") {
		t.Fatalf("unexpected root path: %s", rootPath)
	}

	// A second init without overwrite must not clobber the key.
	if _, _, err := ks.InitializeRootKey("lab", seed, false); err == nil {
		t.Fatalf("expected error on duplicate init without force")
	}

	roleKey, _, err := ks.DeriveKeyFromRole("lab", "intake", false)
	if err != nil {
		t.Fatalf("DeriveKeyFromRole: %v", err)
	}
	wantSeed, err := DeriveRoleSeed(seed, "intake")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if roleKey != ExaminerKeyFromSeed(wantSeed) {
		t.Fatalf("role key mismatch")
	}

	exported, err := ks.ExportKey("lab", "intake")
	if err != nil {
		t.Fatalf("ExportKey: %v", err)
	}
	if exported != roleKey {
		t.Fatalf("exported key mismatch")
	}

	loaded, err := ks.LoadSeed("", "lab", "intake", "")
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if string(loaded) != string(wantSeed) {
		t.Fatalf("loaded seed mismatch")
	}

	entries, err := ks.ListKeys()
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if len(entries) != 1 || entries[0].Identifier != "lab" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if len(entries[0].Permissions) != 1 || entries[0].Permissions[0] != "intake" {
		t.Fatalf("unexpected roles: %+v", entries[0].Permissions)
	}
}

func TestCheckNames(t *testing.T) {
	if err := CheckKeyName("lab-01_A"); err != nil {
		t.Fatalf("CheckKeyName: %v", err)
	}
	if err := CheckKeyName("../escape"); err == nil {
		t.Fatalf("expected error for path characters")
	}
	if err := CheckRole(""); err == nil {
		t.Fatalf("expected error for empty role")
	}
}

func TestParseSeedHex(t *testing.T) {
	hex64 := strings.Repeat("ab", 32)
	seed, err := ParseSeedHex("0x" + hex64 + "\n")
	if err != nil {
		t.Fatalf("ParseSeedHex: %v", err)
	}
	if len(seed) != 32 {
		t.Fatalf("seed length: %d", len(seed))
	}
	if _, err := ParseSeedHex("abcd"); err == nil {
		t.Fatalf("expected error for short seed")
	}
}
