// Command sskr splits secrets into grouped shards and recovers them.
//
//	sskr split --secret 0ff784df000c4380a5ed683f7e6e3dcf --group-threshold 2 \
//	    --group 2-of-3 --group 1-of-1 --group 3-of-5 > shards.txt
//	sskr combine --file shards.txt
//	sskr inspect <shard>
//
// Admin workflow for a recovery keeper:
//
//	sskr keygen --admin-privkey-file alice.pem --admin-pubkey-file alice.pub
//	sskr split --generate 32 --plan plan.yaml --seal-dir sealed/
//	sskr unseal --admin-privkey-file alice.pem sealed/alice-1-1.sealed
//	sskr submit --admin-id alice --admin-privkey-file alice.pem --sealed sealed/alice-1-1.sealed
//	sskr status
//
// Sealed files are encrypted to the holder's public key from the plan, so each
// admin can only open their own shards.
package main
