// Package govote is the cryptographic core of an end-to-end verifiable
// yes/no referendum: Paillier keygen, ballot encryption with an attached
// zero-knowledge proof, a hash-chained and Merkle-indexed bulletin board,
// and threshold decryption of the homomorphic vote sum.
//
// Everything outside this pipeline — voter authentication, HTTP delivery,
// the key-ceremony UI, transport security — is a collaborator that calls
// into this package through the Election type's methods and nothing more.
package govote
